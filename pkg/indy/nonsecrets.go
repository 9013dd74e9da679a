package indy

import (
	"context"

	"indy/internal/command"
	"indy/internal/locator"
)

// AddWalletRecord stores an application record. tagsJSON may be empty.
func AddWalletRecord(ch CommandHandle, h WalletHandle, typ, id, value, tagsJSON string, cb Callback) ErrorCode {
	if code := check(cb == nil, 7, a(3, typ), a(4, id), a(5, value)); code != Success {
		return code
	}
	return submit(command.NonSecretsCommandAddRecord, func(ctx context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.NonSecrets.AddRecord(ctx, h, typ, id, value, tagsJSON))
	}, none(ch, cb))
}

// UpdateWalletRecordValue replaces the value of a record.
func UpdateWalletRecordValue(ch CommandHandle, h WalletHandle, typ, id, value string, cb Callback) ErrorCode {
	if code := check(cb == nil, 6, a(3, typ), a(4, id), a(5, value)); code != Success {
		return code
	}
	return submit(command.NonSecretsCommandUpdateRecordValue, func(ctx context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.NonSecrets.UpdateRecordValue(ctx, h, typ, id, value))
	}, none(ch, cb))
}

// UpdateWalletRecordTags replaces every tag of a record.
func UpdateWalletRecordTags(ch CommandHandle, h WalletHandle, typ, id, tagsJSON string, cb Callback) ErrorCode {
	if code := check(cb == nil, 6, a(3, typ), a(4, id), j(5, tagsJSON)); code != Success {
		return code
	}
	return submit(command.NonSecretsCommandUpdateRecordTags, func(ctx context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.NonSecrets.UpdateRecordTags(ctx, h, typ, id, tagsJSON))
	}, none(ch, cb))
}

// AddWalletRecordTags adds or overwrites tags of a record.
func AddWalletRecordTags(ch CommandHandle, h WalletHandle, typ, id, tagsJSON string, cb Callback) ErrorCode {
	if code := check(cb == nil, 6, a(3, typ), a(4, id), j(5, tagsJSON)); code != Success {
		return code
	}
	return submit(command.NonSecretsCommandAddRecordTags, func(ctx context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.NonSecrets.AddRecordTags(ctx, h, typ, id, tagsJSON))
	}, none(ch, cb))
}

// DeleteWalletRecordTags removes the named tags of a record.
func DeleteWalletRecordTags(ch CommandHandle, h WalletHandle, typ, id, tagNamesJSON string, cb Callback) ErrorCode {
	if code := check(cb == nil, 6, a(3, typ), a(4, id), j(5, tagNamesJSON)); code != Success {
		return code
	}
	return submit(command.NonSecretsCommandDeleteRecordTags, func(ctx context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.NonSecrets.DeleteRecordTags(ctx, h, typ, id, tagNamesJSON))
	}, none(ch, cb))
}

// DeleteWalletRecord removes a record.
func DeleteWalletRecord(ch CommandHandle, h WalletHandle, typ, id string, cb Callback) ErrorCode {
	if code := check(cb == nil, 5, a(3, typ), a(4, id)); code != Success {
		return code
	}
	return submit(command.NonSecretsCommandDeleteRecord, func(ctx context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.NonSecrets.DeleteRecord(ctx, h, typ, id))
	}, none(ch, cb))
}

// GetWalletRecord returns a record shaped by optionsJSON.
func GetWalletRecord(ch CommandHandle, h WalletHandle, typ, id, optionsJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 6, a(3, typ), a(4, id)); code != Success {
		return code
	}
	return submit(command.NonSecretsCommandGetRecord, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.NonSecrets.GetRecord(ctx, h, typ, id, optionsJSON)
	}, str(ch, cb))
}

// SearchHandleCallback receives an opened search.
type SearchHandleCallback func(CommandHandle, ErrorCode, SearchHandle)

// OpenWalletSearch starts a search over records of typ matching queryJSON.
func OpenWalletSearch(ch CommandHandle, h WalletHandle, typ, queryJSON, optionsJSON string, cb SearchHandleCallback) ErrorCode {
	if code := check(cb == nil, 6, a(3, typ)); code != Success {
		return code
	}
	return submit(command.NonSecretsCommandOpenSearch, func(ctx context.Context, l *locator.Locator) (SearchHandle, error) {
		return l.NonSecrets.OpenSearch(ctx, h, typ, queryJSON, optionsJSON)
	}, func(sh SearchHandle, code ErrorCode) {
		if code != Success {
			sh = SearchHandle(InvalidHandle)
		}
		cb(ch, code, sh)
	})
}

// FetchWalletSearchNextRecords returns up to count further records.
func FetchWalletSearchNextRecords(ch CommandHandle, h WalletHandle, sh SearchHandle, count int, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 5); code != Success {
		return code
	}
	if count < 0 {
		return invalidParam(4)
	}
	return submit(command.NonSecretsCommandFetchSearchNextRecords, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.NonSecrets.FetchNext(ctx, h, sh, count)
	}, str(ch, cb))
}

// CloseWalletSearch releases a search.
func CloseWalletSearch(ch CommandHandle, sh SearchHandle, cb Callback) ErrorCode {
	if code := check(cb == nil, 3); code != Success {
		return code
	}
	return submit(command.NonSecretsCommandCloseSearch, func(_ context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.NonSecrets.CloseSearch(sh))
	}, none(ch, cb))
}
