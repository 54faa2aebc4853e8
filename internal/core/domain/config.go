package domain

// Config is the pipeline configuration loaded from wheelhouse.yaml. It names
// the publication target and the human-visible index labels; none of it
// changes the functional structure of the generated index.
type Config struct {
	// Bucket is the object store bucket wheels and indexes are published to.
	Bucket string

	// Namespace is the key prefix inside the bucket (e.g. "rocm").
	Namespace string

	// Variant is the index variant directory name (e.g. "rocm-7.0").
	Variant string

	// BaseURL, when set, makes index hrefs absolute instead of relative.
	BaseURL string

	// Packages is the default allow-list for the duplicate filter.
	Packages []string

	// BuildArgs is the argument set forwarded to the container build.
	BuildArgs BuildArgs
}
