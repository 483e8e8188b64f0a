package seed

// File represents the top-level structure of the category seed file.
//
//	default: 인증샷
//	categories:
//	  - 프리다이빙
//	  - 여행
type File struct {
	Default    string   `yaml:"default,omitempty"`
	Categories []string `yaml:"categories"`
}
