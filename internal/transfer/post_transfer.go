package transfer

type PostCreation struct {
	Content      string `json:"content" form:"content"`
	Hashtags     string `json:"hashtags" form:"hashtags"`
	AccountID    int64  `json:"account_id" form:"account_id"`
	ScheduledFor string `json:"scheduled_for" form:"scheduled_for"` // RFC 3339
}

type PostEdit struct {
	ID           int64   `json:"id"`
	Content      *string `json:"content"`
	Hashtags     *string `json:"hashtags"`
	AccountID    *int64  `json:"account_id"`
	ScheduledFor *string `json:"scheduled_for"`
}

type PostGeneration struct {
	Prompt          string `json:"prompt"`
	Tone            string `json:"tone"`
	Length          string `json:"length"`
	IncludeHashtags bool   `json:"include_hashtags"`
}

type SweepSummary struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}
