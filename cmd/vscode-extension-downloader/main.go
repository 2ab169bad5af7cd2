// Package main provides the entry point for the VS Code extension
// downloader CLI.
//
// The tool builds and maintains a local mirror of the Visual Studio
// Marketplace: it crawls the gallery search API into an index file, and
// uses that index to print download links or mirror every packaged
// extension version to local storage.
//
// Usage:
//
//	vscode-extension-downloader build-index
//	vscode-extension-downloader print-links
//	vscode-extension-downloader mirror -o vscode-extensions
//
// See --help for all available options.
package main

// main is the entry point for the extension downloader.
func main() {
	Execute()
}
