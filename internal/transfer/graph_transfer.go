package transfer

// GraphErrorResponse is the error envelope shared by the Facebook and
// Instagram Graph APIs.
type GraphErrorResponse struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		ErrorUserMsg string `json:"error_user_msg"`
		FbtraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}

type GraphIDResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

type FacebookFeedRequest struct {
	Message string `json:"message"`
	Picture string `json:"picture,omitempty"`
}

type InstagramContainerRequest struct {
	ImageURL string `json:"image_url"`
	Caption  string `json:"caption"`
}

type InstagramPublishRequest struct {
	CreationID string `json:"creation_id"`
}
