// Package sarif provides types and a parser for SARIF (Static Analysis Results
// Interchange Format) v2.1.0 documents, plus the paladin extensions attached to
// results during normalization (stable fingerprint, suppression flag, AI review).
// Specification: https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-v2.1.0.html
package sarif

// FingerprintKey is the key under which the stable paladin fingerprint is
// stored in a result's fingerprints map.
const FingerprintKey = "paladin"

// Log represents the root SARIF log object.
type Log struct {
	Version string `json:"version"`
	Schema  string `json:"$schema,omitempty"`
	Runs    []Run  `json:"runs"`
}

// Run represents a single run of an analysis tool.
type Run struct {
	Tool        Tool         `json:"tool"`
	Results     []Result     `json:"results"`
	Invocations []Invocation `json:"invocations,omitempty"`
	Artifacts   []Artifact   `json:"artifacts,omitempty"`
	Properties  Properties   `json:"properties,omitempty"`
}

// Tool describes the analysis tool that produced the results.
type Tool struct {
	Driver ToolComponent `json:"driver"`
}

// ToolComponent represents a component of an analysis tool.
type ToolComponent struct {
	Name            string                `json:"name"`
	Version         string                `json:"version,omitempty"`
	SemanticVersion string                `json:"semanticVersion,omitempty"`
	InformationURI  string                `json:"informationUri,omitempty"`
	Rules           []ReportingDescriptor `json:"rules,omitempty"`
	Properties      Properties            `json:"properties,omitempty"`
}

// ReportingDescriptor describes a rule produced by a tool.
type ReportingDescriptor struct {
	ID                   string                    `json:"id"`
	Name                 string                    `json:"name,omitempty"`
	ShortDescription     *MultiformatMessageString `json:"shortDescription,omitempty"`
	FullDescription      *MultiformatMessageString `json:"fullDescription,omitempty"`
	Help                 *MultiformatMessageString `json:"help,omitempty"`
	HelpURI              string                    `json:"helpUri,omitempty"`
	DefaultConfiguration *ReportingConfiguration   `json:"defaultConfiguration,omitempty"`
	Properties           Properties                `json:"properties,omitempty"`
}

// ReportingConfiguration specifies the default configuration for a rule.
type ReportingConfiguration struct {
	Enabled    bool       `json:"enabled,omitempty"`
	Level      Level      `json:"level,omitempty"`
	Rank       float64    `json:"rank,omitempty"`
	Parameters Properties `json:"parameters,omitempty"`
}

// Result represents a single result from the analysis.
// Suppressed and AIReview are paladin extensions maintained by the
// normalization and review pipeline, not part of the SARIF standard.
type Result struct {
	RuleID              string            `json:"ruleId,omitempty"`
	RuleIndex           int               `json:"ruleIndex,omitempty"`
	Kind                Kind              `json:"kind,omitempty"`
	Level               Level             `json:"level,omitempty"`
	Message             Message           `json:"message"`
	Locations           []Location        `json:"locations,omitempty"`
	RelatedLocations    []Location        `json:"relatedLocations,omitempty"`
	Fingerprints        map[string]string `json:"fingerprints,omitempty"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
	Properties          Properties        `json:"properties,omitempty"`
	Suppressed          bool              `json:"suppressed"`
	AIReview            *AIReview         `json:"aiReview,omitempty"`
}

// AIReview holds the verdict attached to a finding by the AI reviewer.
type AIReview struct {
	Verdict bool   `json:"verdict"`
	Reason  string `json:"reason"`
}

// Location represents a location in an artifact.
type Location struct {
	ID               int               `json:"id,omitempty"`
	PhysicalLocation *PhysicalLocation `json:"physicalLocation,omitempty"`
	LogicalLocations []LogicalLocation `json:"logicalLocations,omitempty"`
	Message          *Message          `json:"message,omitempty"`
	Properties       Properties        `json:"properties,omitempty"`
}

// PhysicalLocation represents a physical location in an artifact.
type PhysicalLocation struct {
	ArtifactLocation *ArtifactLocation `json:"artifactLocation,omitempty"`
	Region           *Region           `json:"region,omitempty"`
	ContextRegion    *Region           `json:"contextRegion,omitempty"`
	Properties       Properties        `json:"properties,omitempty"`
}

// ArtifactLocation represents the location of an artifact.
type ArtifactLocation struct {
	URI        string     `json:"uri,omitempty"`
	URIBaseID  string     `json:"uriBaseId,omitempty"`
	Index      int        `json:"index,omitempty"`
	Properties Properties `json:"properties,omitempty"`
}

// Region represents a region within an artifact.
type Region struct {
	StartLine      int              `json:"startLine,omitempty"`
	StartColumn    int              `json:"startColumn,omitempty"`
	EndLine        int              `json:"endLine,omitempty"`
	EndColumn      int              `json:"endColumn,omitempty"`
	CharOffset     int              `json:"charOffset,omitempty"`
	CharLength     int              `json:"charLength,omitempty"`
	Snippet        *ArtifactContent `json:"snippet,omitempty"`
	Message        *Message         `json:"message,omitempty"`
	SourceLanguage string           `json:"sourceLanguage,omitempty"`
	Properties     Properties       `json:"properties,omitempty"`
}

// ArtifactContent represents the content of an artifact.
type ArtifactContent struct {
	Text       string                    `json:"text,omitempty"`
	Binary     string                    `json:"binary,omitempty"`
	Rendered   *MultiformatMessageString `json:"rendered,omitempty"`
	Properties Properties                `json:"properties,omitempty"`
}

// LogicalLocation represents a logical location (e.g., function, class).
type LogicalLocation struct {
	Name               string     `json:"name,omitempty"`
	Index              int        `json:"index,omitempty"`
	FullyQualifiedName string     `json:"fullyQualifiedName,omitempty"`
	Kind               string     `json:"kind,omitempty"`
	Properties         Properties `json:"properties,omitempty"`
}

// Message represents a message to the user.
type Message struct {
	Text       string     `json:"text,omitempty"`
	Markdown   string     `json:"markdown,omitempty"`
	ID         string     `json:"id,omitempty"`
	Arguments  []string   `json:"arguments,omitempty"`
	Properties Properties `json:"properties,omitempty"`
}

// MultiformatMessageString represents a message in multiple formats.
type MultiformatMessageString struct {
	Text       string     `json:"text"`
	Markdown   string     `json:"markdown,omitempty"`
	Properties Properties `json:"properties,omitempty"`
}

// Invocation describes a single invocation of an analysis tool.
type Invocation struct {
	CommandLine         string            `json:"commandLine,omitempty"`
	Arguments           []string          `json:"arguments,omitempty"`
	StartTimeUTC        string            `json:"startTimeUtc,omitempty"`
	EndTimeUTC          string            `json:"endTimeUtc,omitempty"`
	ExecutionSuccessful bool              `json:"executionSuccessful"`
	WorkingDirectory    *ArtifactLocation `json:"workingDirectory,omitempty"`
	ExitCode            int               `json:"exitCode,omitempty"`
	Properties          Properties        `json:"properties,omitempty"`
}

// Artifact describes an artifact that was analyzed.
type Artifact struct {
	Location       *ArtifactLocation `json:"location,omitempty"`
	Length         int               `json:"length,omitempty"`
	MimeType       string            `json:"mimeType,omitempty"`
	SourceLanguage string            `json:"sourceLanguage,omitempty"`
	Hashes         map[string]string `json:"hashes,omitempty"`
	Properties     Properties        `json:"properties,omitempty"`
}

// Properties is a property bag for custom properties.
type Properties map[string]any

// Level represents the severity level of a result.
type Level string

const (
	LevelNone    Level = "none"
	LevelNote    Level = "note"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// IsValid checks if the level is valid.
func (l Level) IsValid() bool {
	switch l {
	case LevelNone, LevelNote, LevelWarning, LevelError, "":
		return true
	default:
		return false
	}
}

// Kind represents the kind of a result.
type Kind string

const (
	KindNotApplicable Kind = "notApplicable"
	KindPass          Kind = "pass"
	KindFail          Kind = "fail"
	KindReview        Kind = "review"
	KindOpen          Kind = "open"
	KindInformational Kind = "informational"
)

// IsValid checks if the kind is valid.
func (k Kind) IsValid() bool {
	switch k {
	case KindNotApplicable, KindPass, KindFail, KindReview, KindOpen, KindInformational, "":
		return true
	default:
		return false
	}
}
