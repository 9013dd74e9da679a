package indy

import (
	"context"

	"indy/internal/command"
	"indy/internal/locator"
)

// OpenBlobStorageReader opens a tails reader of typ ("default") over the
// directory in configJSON.
func OpenBlobStorageReader(ch CommandHandle, typ, configJSON string, cb func(CommandHandle, ErrorCode, BlobReaderHandle)) ErrorCode {
	if code := check(cb == nil, 4, a(2, typ), j(3, configJSON)); code != Success {
		return code
	}
	return submit(command.BlobStorageCommandOpenReader, func(_ context.Context, l *locator.Locator) (BlobReaderHandle, error) {
		return l.Blobs.OpenReader(typ, configJSON)
	}, func(h BlobReaderHandle, code ErrorCode) {
		if code != Success {
			h = BlobReaderHandle(InvalidHandle)
		}
		cb(ch, code, h)
	})
}

// OpenBlobStorageWriter opens a tails writer of typ over the directory in
// configJSON.
func OpenBlobStorageWriter(ch CommandHandle, typ, configJSON string, cb func(CommandHandle, ErrorCode, BlobWriterHandle)) ErrorCode {
	if code := check(cb == nil, 4, a(2, typ), j(3, configJSON)); code != Success {
		return code
	}
	return submit(command.BlobStorageCommandOpenWriter, func(_ context.Context, l *locator.Locator) (BlobWriterHandle, error) {
		return l.Blobs.OpenWriter(typ, configJSON)
	}, func(h BlobWriterHandle, code ErrorCode) {
		if code != Success {
			h = BlobWriterHandle(InvalidHandle)
		}
		cb(ch, code, h)
	})
}
