package syncyoutubecontent

type Input struct {
	ID                       *int64 `json:"id,omitempty"`
	ModuleID                 int64  `json:"moduleId"`
	Title                    string `json:"title"`
	YouTubeVideoID           string `json:"youtubeVideoId"`
	Description              string `json:"description"`
	EstimatedDurationMinutes *int   `json:"estimatedDurationMinutes,omitempty"`
	ContentOrder             int    `json:"contentOrder"`
}

type Output struct {
	ContentID       int64  `json:"contentId"`
	DurationMinutes int    `json:"durationMinutes"`
	ThumbnailURL    string `json:"thumbnailUrl"`
	ChannelName     string `json:"channelName"`
}

type thumbnail struct {
	URL string `json:"url"`
}

type videoListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			Thumbnails   struct {
				Default thumbnail `json:"default"`
				Medium  thumbnail `json:"medium"`
				High    thumbnail `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}
