package fs

import (
	"os"
	"path/filepath"
)

// SiteTree mirrors a directory: its subdirectories and the files it holds.
type SiteTree struct {
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	Children []SiteTree `json:"children"`
	Pages    []PageRef  `json:"pages"`
}

// PageRef points at one file of the tree.
type PageRef struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Walk builds the tree rooted at root. Paths in the result are relative to
// root and use forward slashes. A missing root yields an empty tree.
func Walk(root string) (SiteTree, error) {
	tree, err := walk(root, ".")
	if os.IsNotExist(err) {
		return SiteTree{Name: filepath.Base(root), Path: ".", Children: []SiteTree{}, Pages: []PageRef{}}, nil
	}
	return tree, err
}

func walk(root, rel string) (SiteTree, error) {
	abs := filepath.Join(root, rel)
	name := filepath.Base(abs)
	tree := SiteTree{Name: name, Path: filepath.ToSlash(rel), Children: []SiteTree{}, Pages: []PageRef{}}

	des, err := os.ReadDir(abs)
	if err != nil {
		return tree, err
	}
	for _, de := range des {
		childRel := filepath.Join(rel, de.Name())
		if de.IsDir() {
			child, err := walk(root, childRel)
			if err != nil {
				return tree, err
			}
			tree.Children = append(tree.Children, child)
			continue
		}
		tree.Pages = append(tree.Pages, PageRef{Name: de.Name(), Path: filepath.ToSlash(childRel)})
	}
	return tree, nil
}
