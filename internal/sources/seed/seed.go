package seed

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/reelmark/internal/domain"
)

// Seed is the built-in category list and the preselected category for new bookmarks.
type Seed struct {
	Categories []string
	Default    string
}

// Builtin returns the compiled-in seed.
func Builtin() Seed {
	return Seed{
		Categories: append([]string(nil), domain.DefaultCategories...),
		Default:    domain.DefaultSelection,
	}
}

// Resolve returns the seed from path, or the built-in one when path is empty.
// override replaces the default selection when non-empty.
func Resolve(path, override string) (Seed, error) {
	s := Builtin()
	if path != "" {
		file, err := NewLoader(path).Load()
		if err != nil {
			return Seed{}, err
		}
		if s, err = fromFile(file); err != nil {
			return Seed{}, err
		}
	}
	if override = strings.TrimSpace(override); override != "" {
		s.Default = override
	}
	return normalize(s), nil
}

func fromFile(f File) (Seed, error) {
	set := domain.NewCategorySet(f.Categories...)
	if set.Len() == 0 {
		return Seed{}, fmt.Errorf("no valid categories found in seed file")
	}
	return Seed{Categories: set.Labels(), Default: strings.TrimSpace(f.Default)}, nil
}

// normalize guarantees the default is a seed member. A default that is not
// listed is appended, an empty one falls back to the first category.
func normalize(s Seed) Seed {
	set := domain.NewCategorySet(s.Categories...)
	if s.Default == "" || s.Default == domain.AllCategories {
		labels := set.Labels()
		if len(labels) > 0 {
			s.Default = labels[0]
		}
	}
	set.Add(s.Default)
	s.Categories = set.Labels()
	return s
}
