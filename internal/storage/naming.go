package storage

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/joseph-ayodele/doc-analyzer/constants"
)

var reTimestampPrefix = regexp.MustCompile(`^\d+-`)

// ObjectName is the key an upload is stored under: "<unix millis>-<name>".
func ObjectName(now time.Time, fileName string) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(fileName))
	if name == "" || name == "." || name == ".." {
		name = constants.UploadFallbackName
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), name)
}

// StripTimestamp drops a leading "<digits>-" from an object key.
func StripTimestamp(key string) string {
	return reTimestampPrefix.ReplaceAllString(key, "")
}

func hasTimestamp(key string) bool {
	return reTimestampPrefix.MatchString(key)
}

// AnalysisKey is the key the analysis of an uploaded object is stored under.
func AnalysisKey(objectName string) string {
	return constants.AnalysisObjectPrefix + StripTimestamp(objectName)
}

func IsAnalysisKey(key string) bool {
	return strings.HasPrefix(key, constants.AnalysisObjectPrefix)
}

// associatedAnalysisKey pairs a listed object with its analysis by dropping
// everything up to the first '-'.
func associatedAnalysisKey(objectName string) string {
	_, rest, found := strings.Cut(objectName, "-")
	if !found {
		rest = objectName
	}
	return constants.AnalysisObjectPrefix + rest
}

// AnalysisCandidates lists, in lookup order, the keys an analysis id may be
// stored under.
func AnalysisCandidates(id string) []string {
	if IsAnalysisKey(id) {
		return []string{id}
	}
	out := []string{constants.AnalysisObjectPrefix + id}
	stamped := hasTimestamp(id)
	if stamped {
		out = appendUnique(out, constants.AnalysisObjectPrefix+StripTimestamp(id))
	}
	out = appendUnique(out, id)
	if stamped && strings.Contains(id, ".") {
		base, _, _ := strings.Cut(StripTimestamp(id), ".")
		out = appendUnique(out, constants.AnalysisObjectPrefix+base)
	}
	return out
}

// partialMatches appends listed analysis keys that contain a candidate's core,
// or whose core a candidate contains.
func partialMatches(candidates, listed []string) []string {
	out := slices.Clone(candidates)
	for _, key := range listed {
		if !IsAnalysisKey(key) {
			continue
		}
		keyCore := strings.Replace(key, constants.AnalysisObjectPrefix, "", 1)
		for _, id := range candidates {
			idCore := strings.Replace(id, constants.AnalysisObjectPrefix, "", 1)
			if strings.Contains(key, idCore) || strings.Contains(id, keyCore) {
				out = appendUnique(out, key)
			}
		}
	}
	return out
}

func appendUnique(list []string, v string) []string {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}
