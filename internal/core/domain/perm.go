package domain

import "io/fs"

const (
	// DirPerm is the permission used for directories created by the pipeline.
	DirPerm fs.FileMode = 0o755

	// FilePerm is the permission used for files written by the pipeline.
	FilePerm fs.FileMode = 0o644
)
