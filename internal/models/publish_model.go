package models

// PublishOutcome is the normalized result of one platform publish attempt.
type PublishOutcome struct {
	Success  bool   `bson:"success" json:"success"`
	Platform string `bson:"platform" json:"platform"`
	PostID   string `bson:"post_id,omitempty" json:"postId,omitempty"`
	URL      string `bson:"url,omitempty" json:"url,omitempty"`
	Error    string `bson:"error,omitempty" json:"error,omitempty"`
}

type PublishResult struct {
	Successful []PublishOutcome `json:"successful"`
	Failed     []PublishOutcome `json:"failed"`
}

func PlatformNames(outcomes []PublishOutcome) []string {
	names := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		names = append(names, o.Platform)
	}
	return names
}

func FailedOutcome(platform, msg string) PublishOutcome {
	return PublishOutcome{Success: false, Platform: platform, Error: msg}
}
