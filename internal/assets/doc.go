// Package assets provides the CSS styles and HTML template used for problem
// sheets.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in sheet and compact styles, sheet template
//	    ├── FilesystemLoader  - the same layout read from a directory on disk
//	    └── AssetResolver     - custom directory first, embedded as fallback
//
// A custom directory may override any single asset and inherit the rest.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css
//	└── templates/
//	    └── {name}.html
//
// # Security
//
// Asset names may not contain separators or dots. FilesystemLoader resolves
// symlinks and refuses paths that leave basePath.
package assets
