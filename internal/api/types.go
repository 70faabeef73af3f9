package api

// Request bodies use the form field names so error keys line up with input
// keys. The validate tags are envelope limits only; form rules run in the
// forms engine.

type fileRequest struct {
	Name        string `json:"name" validate:"max=255"`
	Size        int64  `json:"size" validate:"gte=0"`
	ContentType string `json:"contentType,omitempty" validate:"max=128"`
}

type projectRequest struct {
	Software    string       `json:"projectSoftware" validate:"max=64"`
	Type        string       `json:"projectType" validate:"max=64"`
	Name        string       `json:"projectName" validate:"max=2000"`
	Description string       `json:"description" validate:"max=20000"`
	Code        string       `json:"singleProject" validate:"max=200000"`
	CodeBefore  string       `json:"codeBlockOne" validate:"max=200000"`
	CodeAfter   string       `json:"codeBlockTwo" validate:"max=200000"`
	Audio       *fileRequest `json:"audioUpload,omitempty"`
	YouTubeLink string       `json:"youtubeLink" validate:"max=2048"`
	Tags        string       `json:"tags" validate:"max=1000"`
}

type snippetRequest struct {
	Software    string       `json:"projectSoftware" validate:"max=64"`
	Name        string       `json:"snippetName" validate:"max=2000"`
	Description string       `json:"description" validate:"max=20000"`
	Code        string       `json:"codeBlock" validate:"max=200000"`
	Audio       *fileRequest `json:"audioUpload,omitempty"`
	YouTubeLink string       `json:"youtubeLink" validate:"max=2048"`
	Tags        string       `json:"tags" validate:"max=1000"`
}

type registerRequest struct {
	Username     string `json:"username" validate:"max=500"`
	Email        string `json:"email" validate:"max=320"`
	PasswordOne  string `json:"passwordOne" validate:"max=256"`
	PasswordTwo  string `json:"passwordTwo" validate:"max=256"`
	PortfolioURL string `json:"portfolioUrl" validate:"max=2048"`
	MastodonURL  string `json:"mastodonUrl" validate:"max=2048"`
	BlueskyURL   string `json:"blueskyUrl" validate:"max=2048"`
	LinkedinURL  string `json:"linkedinUrl" validate:"max=2048"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type validationPayload struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

type successPayload struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

type healthPayload struct {
	Status string `json:"status"`
}
