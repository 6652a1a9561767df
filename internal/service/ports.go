package service

import "context"

// Ports are the platform-facing collaborators the engine depends on. They
// are implemented by the transport layer and may be slow or fail; the
// engine never assumes a port call succeeded before persisting state that
// depends on it.

type AdminLookupPort interface {
	IsAdmin(ctx context.Context, userID, chatID int64) (bool, error)
}

type MediaUploadPort interface {
	Upload(ctx context.Context, content []byte, mediaType string, chatID int64) (fileID string, err error)
}

type LogChannelPort interface {
	Send(ctx context.Context, channelID int64, text string) error
}

type Ports struct {
	AdminLookup AdminLookupPort
	MediaUpload MediaUploadPort
	LogChannel  LogChannelPort
}
