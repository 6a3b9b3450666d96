package transfer

type LinkedInUserInfo struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

type LinkedInShareText struct {
	Text string `json:"text"`
}

type LinkedInShareMedia struct {
	Status      string             `json:"status"`
	Media       string             `json:"media,omitempty"` // digital media asset urn
	OriginalURL string             `json:"originalUrl,omitempty"`
	Title       *LinkedInShareText `json:"title,omitempty"`
}

type LinkedInShareContent struct {
	ShareCommentary    LinkedInShareText    `json:"shareCommentary"`
	ShareMediaCategory string               `json:"shareMediaCategory"`
	Media              []LinkedInShareMedia `json:"media,omitempty"`
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

type LinkedInUGCPostResponse struct {
	ID string `json:"id"`
}

type LinkedInErrorResponse struct {
	Status           int    `json:"status"`
	ServiceErrorCode int    `json:"serviceErrorCode"`
	Code             string `json:"code"`
	Message          string `json:"message"`
}

type LinkedInServiceRelationship struct {
	RelationshipType string `json:"relationshipType"`
	Identifier       string `json:"identifier"`
}

type LinkedInRegisterUpload struct {
	RegisterUploadRequest struct {
		Recipes              []string                      `json:"recipes"`
		Owner                string                        `json:"owner"`
		ServiceRelationships []LinkedInServiceRelationship `json:"serviceRelationships"`
	} `json:"registerUploadRequest"`
}

type LinkedInRegisterUploadResponse struct {
	Value struct {
		Asset           string `json:"asset"`
		UploadMechanism struct {
			HTTPRequest struct {
				UploadURL string `json:"uploadUrl"`
			} `json:"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"`
		} `json:"uploadMechanism"`
	} `json:"value"`
}
