package model

import "time"

// Upload represents one uploaded document.
//
// The file content lives inline in Data as a self-describing text payload
// ("data:<media-type>;base64,<bytes>" — see filedata.go), so a record is
// complete on its own and survives in a text column.
//
// UploadedBy holds the owner's user ID, the same identifier type SharedWith
// uses. One stable identifier everywhere; never the email, which can change
// through a profile edit.
//
// SharedWith lists the user IDs granted read access. An ID appears at most
// once; order is the order shares were granted. Deleting a user does NOT
// scrub their ID out of SharedWith lists — dangling entries are tolerated
// and skipped when resolved against the user table.
type Upload struct {
	ID              string    `json:"id"`
	FileDescription string    `json:"fileDescription"`
	FileName        string    `json:"fileName"`
	Data            string    `json:"data"`
	UploadedBy      string    `json:"uploadedBy"`
	SharedWith      []string  `json:"sharedWith,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
