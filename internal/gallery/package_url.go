package gallery

import "fmt"

// packageURLFormat is the canonical download path for one packaged
// extension version (a .vsix artifact).
const packageURLFormat = "https://marketplace.visualstudio.com/_apis/public/gallery/publishers/%s/vsextensions/%s/%s/vspackage"

// PackageURL returns the artifact download URL for one (publisher,
// extension, version) triple.
func PackageURL(publisher, extension, version string) string {
	return fmt.Sprintf(packageURLFormat, publisher, extension, version)
}
