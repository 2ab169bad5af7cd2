package mirror

import (
	"fmt"
	"io"

	"github.com/wrouesnel/vscode-extension-downloader/internal/gallery"
	"github.com/wrouesnel/vscode-extension-downloader/internal/model"
)

// PrintLinks writes one package download URL per indexed (publisher,
// extension, version) triple to w. No network activity takes place and no
// ordering is guaranteed beyond the index's natural iteration order.
func PrintLinks(w io.Writer, index *model.Index) error {
	return index.Walk(func(publisher, extension, version string) error {
		_, err := fmt.Fprintln(w, gallery.PackageURL(publisher, extension, version))
		return err
	})
}
