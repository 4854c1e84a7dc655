package constant

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}

type RecordingStatus string

const (
	RecordingStatusUploaded      RecordingStatus = "uploaded"
	RecordingStatusLocalFallback RecordingStatus = "local-fallback"
)

type RecordingType string

const (
	RecordingTypeRecording  RecordingType = "recording"
	RecordingTypeScreenshot RecordingType = "screenshot"
)

type OutputFormat string

const (
	OutputFormatWebM OutputFormat = "webm"
	OutputFormatMP4  OutputFormat = "mp4"
)

func (f OutputFormat) Valid() bool {
	return f == OutputFormatWebM || f == OutputFormatMP4
}

func (f OutputFormat) String() string {
	return string(f)
}

type ActiveFlag string

const (
	ActiveFlagYes ActiveFlag = "YES"
	ActiveFlagNo  ActiveFlag = "NO"
)

// Redirect reasons carried in the error query parameter. Templates translate
// these into inline messages; handlers never emit raw error text.
const (
	ReasonInvalidCredentials = "1"
	ReasonInvalidRequest     = "invalid_request"
	ReasonSessionExpired     = "session_expired"
	ReasonSecurityViolation  = "security_violation"
	ReasonInvalidRange       = "invalid_range"
	ReasonInvalidFormat      = "invalid_format"
	ReasonUserNotFound       = "user_not_found"
	ReasonNoRecordings       = "no_recordings"
	ReasonNoResolvableFiles  = "no_files"
	ReasonCombinationFailed  = "combination_failed"
	ReasonBackupFailed       = "backup_failed"
	ReasonServerError        = "server_error"
)
