// Package gallery talks to the Visual Studio Marketplace gallery API.
// It builds page queries, classifies endpoint failures, and crawls the
// paginated search results into a model.Index. It also knows the package
// download URL scheme for individual extension versions.
package gallery
