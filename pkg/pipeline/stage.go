package pipeline

import (
	"strings"

	"github.com/weiye465/Kindle-Transfer-App/pkg/converter"
)

// Stage is a state of a pipeline run.
type Stage string

const (
	StageReceived          Stage = "received"
	StageStored            Stage = "stored"
	StageConverted         Stage = "converted"
	StageConversionSkipped Stage = "conversion_skipped"
	StageDelivered         Stage = "delivered"
	StageFailed            Stage = "failed"
)

func (s Stage) String() string {
	return string(s)
}

// AllowedExtensions lists the accepted upload extensions, lower case.
func AllowedExtensions() []string {
	formats := converter.Formats()
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		out = append(out, f.Extension())
	}
	return out
}

// AllowedFile reports whether name has an accepted extension.
// The extension is whatever follows the last dot, in any case.
func AllowedFile(name string) bool {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return false
	}
	_, err := converter.ParseFormat(name[i+1:])
	return err == nil
}
