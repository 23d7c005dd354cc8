package v1

// SearchJob describes one scan: where to look, what to match and where the
// archive of matching files goes.
type SearchJob struct {
	Kind     string        `yaml:"kind" json:"kind" validate:"required,eq=Search"`
	Metadata Metadata      `yaml:"metadata" json:"metadata"`
	Spec     SearchJobSpec `yaml:"spec" json:"spec"`
}

type Metadata struct {
	Name string `yaml:"name" json:"name"`
}

type SearchJobSpec struct {
	// Root is the directory the scan starts from.
	Root string `yaml:"root" json:"root" validate:"required"`

	// Pattern is matched against every line of every file. A line matches
	// only when the whole line is accepted. Unset matches every file.
	Pattern *string `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	// Output configures the archive of matching files. Without it, matches
	// are only reported.
	Output *OutputSpec `yaml:"output,omitempty" json:"output,omitempty"`
}

// OutputSpec configures how matching files are archived.
type OutputSpec struct {
	// Compression is the ZIP entry compression (default: deflate).
	Compression string `yaml:"compression,omitempty" json:"compression,omitempty" validate:"omitempty,oneof=deflate store zstd"`

	// Destination configures where the archive is written.
	Destination DestinationSpec `yaml:"destination" json:"destination"`
}

// DestinationSpec configures the archive destination (exactly one field should be set).
type DestinationSpec struct {
	Stdout *StdoutSpec `yaml:"stdout,omitempty" json:"stdout,omitempty" validate:"required_without_all=Zip S3"`
	Zip    *ZipSpec    `yaml:"zip,omitempty" json:"zip,omitempty" validate:"required_without_all=Stdout S3"`
	S3     *S3Spec     `yaml:"s3,omitempty" json:"s3,omitempty" validate:"required_without_all=Stdout Zip"`
}

// StdoutSpec writes the archive to standard output (no options currently).
type StdoutSpec struct{}

// ZipSpec writes the archive to a local file.
type ZipSpec struct {
	// Path is the path to the ZIP file to create.
	Path string `yaml:"path" json:"path" validate:"required"`
}

// S3Spec uploads the archive to S3-compatible object storage.
type S3Spec struct {
	Bucket         string `yaml:"bucket" json:"bucket" validate:"required"`
	Key            string `yaml:"key" json:"key" validate:"required"`
	Region         string `yaml:"region,omitempty" json:"region,omitempty"`
	Endpoint       string `yaml:"endpoint,omitempty" json:"endpoint,omitempty" validate:"omitempty,url"`
	ForcePathStyle bool   `yaml:"force_path_style,omitempty" json:"force_path_style,omitempty"`

	// Credentials overrides the AWS default credential chain.
	Credentials *S3Credentials `yaml:"credentials,omitempty" json:"credentials,omitempty"`
}

type S3Credentials struct {
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id" validate:"required"`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key" validate:"required"`
}
