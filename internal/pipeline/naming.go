package pipeline

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// timestampLayout is the UTC prefix of every artifact base name.
const timestampLayout = "20060102_150405"

// Artifact name suffixes.
const (
	suffixUpload             = "_upload"
	suffixOriginal           = "_original.jpg"
	suffixProcessed          = "_processed.jpg"
	suffixHistogramOriginal  = "_hist_original.png"
	suffixHistogramProcessed = "_hist_processed.png"
)

var (
	artifactNamePattern = regexp.MustCompile(
		`^\d{8}_\d{6}_[0-9a-f]{8}(_original\.jpg|_processed\.jpg|_hist_original\.png|_hist_processed\.png)$`,
	)
	uploadNamePattern = regexp.MustCompile(`^\d{8}_\d{6}_[0-9a-f]{8}_upload$`)
)

// BaseName returns the shared prefix for one request's artifacts:
// the UTC time as YYYYMMDD_HHMMSS followed by the first 8 hex digits of id.
func BaseName(now time.Time, id uuid.UUID) string {
	return now.UTC().Format(timestampLayout) + "_" + id.String()[:8]
}

// IsArtifactName reports whether name is a bare file name produced by the
// pipeline. Raw uploads never match.
func IsArtifactName(name string) bool {
	return artifactNamePattern.MatchString(name)
}

// IsManagedName reports whether name is a file the pipeline writes: an
// artifact or a raw upload left behind by an interrupted request.
func IsManagedName(name string) bool {
	return IsArtifactName(name) || uploadNamePattern.MatchString(name)
}
