// Package archive lists and extracts generated-sources archives through the
// system tar binary.
package archive

import (
	"context"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/clientstage/internal/exec"
)

// clientFolderPattern matches directory entries exactly two segments below
// the archive root, e.g. "./java/google-cloud-pubsub/".
var clientFolderPattern = regexp.MustCompile(`^\./([^/]+/){2}$`)

// ClientFolder is a two-segment directory entry of the archive listing.
type ClientFolder string

// Segments returns the language and unit names of the folder.
func (f ClientFolder) Segments() (language, unit string) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(string(f), "./"), "/"), "/")
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

// Language returns the first segment of the folder.
func (f ClientFolder) Language() string {
	language, _ := f.Segments()
	return language
}

// IsClientFolder reports whether a listing entry denotes a client folder.
func IsClientFolder(entry string) bool {
	return clientFolderPattern.MatchString(entry)
}

// FilterClientFolders keeps the client folder entries of a tar listing in
// their original order. Duplicates are kept.
func FilterClientFolders(listing string) []ClientFolder {
	var folders []ClientFolder
	for _, entry := range strings.Split(listing, "\n") {
		entry = strings.TrimSuffix(entry, "\r")
		if IsClientFolder(entry) {
			folders = append(folders, ClientFolder(entry))
		}
	}
	return folders
}

// Inventory lists the client folders carried by an archive.
type Inventory struct {
	Runner exec.Runner
	// Dir is the working directory of the tar process.
	Dir string
}

// List runs one `tar -tf` over the archive and filters its entries.
func (i *Inventory) List(ctx context.Context, archivePath string) ([]ClientFolder, error) {
	res, err := i.Runner.Run(ctx, exec.Command{
		Name: "tar",
		Args: []string{"-tf", archivePath},
		Dir:  i.Dir,
	})
	if err != nil {
		return nil, err
	}
	return FilterClientFolders(res.Stdout), nil
}
