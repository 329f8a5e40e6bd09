package transfer

type LinkedInShareMedia struct {
	Status      string `json:"status"`
	OriginalURL string `json:"originalUrl"`
}

type LinkedInShareCommentary struct {
	Text string `json:"text"`
}

type LinkedInShareContent struct {
	ShareCommentary    LinkedInShareCommentary `json:"shareCommentary"`
	ShareMediaCategory string                  `json:"shareMediaCategory"`
	Media              []LinkedInShareMedia    `json:"media,omitempty"`
}

type LinkedInUGCPost struct {
	Author          string `json:"author"`
	LifecycleState  string `json:"lifecycleState"`
	SpecificContent struct {
		ShareContent LinkedInShareContent `json:"com.linkedin.ugc.ShareContent"`
	} `json:"specificContent"`
	Visibility struct {
		MemberNetworkVisibility string `json:"com.linkedin.ugc.MemberNetworkVisibility"`
	} `json:"visibility"`
}

type LinkedInPostResponse struct {
	ID string `json:"id"`
}

type LinkedInErrorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}
