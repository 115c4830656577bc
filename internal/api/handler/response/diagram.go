package response

import "time"

// DiagramInfo is a listing entry: enough for the open dialog without
// shipping the document payload.
type DiagramInfo struct {
	Filename        string    `json:"filename"`
	Size            int       `json:"size"`
	Created         time.Time `json:"created"`
	Updated         time.Time `json:"updated"`
	NodeCount       int       `json:"nodeCount"`
	ConnectionCount int       `json:"connectionCount"`
}
