package firehose

// jetstreamEvent is the raw JSON structure from Jetstream.
type jetstreamEvent struct {
	DID    string           `json:"did"`
	TimeUS int64            `json:"time_us"`
	Kind   string           `json:"kind"`
	Commit *jetstreamCommit `json:"commit,omitempty"`
}

// jetstreamCommit is the raw commit data from Jetstream.
type jetstreamCommit struct {
	Rev        string            `json:"rev"`
	Operation  string            `json:"operation"`
	Collection string            `json:"collection"`
	RKey       string            `json:"rkey"`
	Record     *engagementRecord `json:"record,omitempty"`
	CID        string            `json:"cid"`
}

// engagementRecord is the parsed content of an app.bsky.feed.like or
// app.bsky.feed.repost record. Both collections share this shape: a subject
// reference plus a creation time.
type engagementRecord struct {
	Type      string    `json:"$type"`
	CreatedAt string    `json:"createdAt"`
	Subject   strongRef `json:"subject"`
}

// strongRef is a reference to a specific version of a record.
type strongRef struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}
