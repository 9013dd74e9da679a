package encryption

import (
	"crypto/rand"

	"indy/internal/wallet"
	"indy/internal/wallet/storage"
	dErrors "indy/pkg/domain-errors"
)

// EncryptType returns the lookup ciphertext of a record type.
func (k *Keys) EncryptType(typ string) []byte {
	return EncryptDeterministic(&k.Type, &k.ItemHMAC, []byte(typ))
}

// EncryptID returns the lookup ciphertext of a record id.
func (k *Keys) EncryptID(id string) []byte {
	return EncryptDeterministic(&k.Name, &k.ItemHMAC, []byte(id))
}

// EncryptTagName returns the lookup ciphertext of a tag name. The "~"
// marker is part of the plaintext, so plain and encrypted tags of the
// same base name never collide.
func (k *Keys) EncryptTagName(name string) []byte {
	return EncryptDeterministic(&k.TagName, &k.TagsHMAC, []byte(name))
}

// TagValueHMAC is the equality token stored next to an encrypted tag value.
func (k *Keys) TagValueHMAC(name, value string) []byte {
	return MAC(&k.TagsHMAC, []byte(name), []byte{0}, []byte(value))
}

// EncryptTagNames encrypts names for tag deletion.
func (k *Keys) EncryptTagNames(names []string) [][]byte {
	out := make([][]byte, len(names))
	for i, n := range names {
		out[i] = k.EncryptTagName(n)
	}
	return out
}

// EncryptTags encrypts every tag according to its mode.
func (k *Keys) EncryptTags(tags wallet.Tags) ([]storage.Tag, error) {
	out := make([]storage.Tag, 0, len(tags))
	for name, value := range tags {
		t := storage.Tag{Name: k.EncryptTagName(name)}
		if wallet.IsPlainTag(name) {
			t.Value = []byte(value)
			t.Plain = true
		} else {
			ct, err := EncryptRandom(&k.TagValue, []byte(value))
			if err != nil {
				return nil, err
			}
			t.Value = ct
			t.HMAC = k.TagValueHMAC(name, value)
		}
		out = append(out, t)
	}
	return out, nil
}

// DecryptTags reverses EncryptTags.
func (k *Keys) DecryptTags(tags []storage.Tag) (wallet.Tags, error) {
	out := make(wallet.Tags, len(tags))
	for _, t := range tags {
		name, err := Decrypt(&k.TagName, t.Name)
		if err != nil {
			return nil, err
		}
		if t.Plain {
			out[string(name)] = string(t.Value)
			continue
		}
		value, err := Decrypt(&k.TagValue, t.Value)
		if err != nil {
			return nil, err
		}
		out[string(name)] = string(value)
	}
	return out, nil
}

// EncryptValue seals a record value under a fresh per-record key and
// returns the value ciphertext with the wrapped key.
func (k *Keys) EncryptValue(value string) (ct, wrappedKey []byte, err error) {
	var rk [KeySize]byte
	if _, err := rand.Read(rk[:]); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "generate record key")
	}
	if ct, err = EncryptRandom(&rk, []byte(value)); err != nil {
		return nil, nil, err
	}
	if wrappedKey, err = EncryptRandom(&k.Value, rk[:]); err != nil {
		return nil, nil, err
	}
	return ct, wrappedKey, nil
}

// DecryptValue reverses EncryptValue.
func (k *Keys) DecryptValue(ct, wrappedKey []byte) (string, error) {
	raw, err := Decrypt(&k.Value, wrappedKey)
	if err != nil {
		return "", err
	}
	if len(raw) != KeySize {
		return "", dErrors.New(dErrors.CodeWalletEncryptionError, "invalid record key")
	}
	var rk [KeySize]byte
	copy(rk[:], raw)
	value, err := Decrypt(&rk, ct)
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// EncryptRecord encrypts a full record for storage.
func (k *Keys) EncryptRecord(r wallet.Record) (*storage.Record, error) {
	ct, key, err := k.EncryptValue(r.Value)
	if err != nil {
		return nil, err
	}
	tags, err := k.EncryptTags(r.Tags)
	if err != nil {
		return nil, err
	}
	return &storage.Record{
		Type:  k.EncryptType(r.Type),
		ID:    k.EncryptID(r.ID),
		Value: ct,
		Key:   key,
		Tags:  tags,
	}, nil
}

// DecryptRecord decrypts the projections selected by opts. The id is
// always returned.
func (k *Keys) DecryptRecord(r *storage.Record, opts wallet.RecordOptions) (wallet.Record, error) {
	var out wallet.Record
	id, err := Decrypt(&k.Name, r.ID)
	if err != nil {
		return out, err
	}
	out.ID = string(id)
	if opts.RetrieveType {
		typ, err := Decrypt(&k.Type, r.Type)
		if err != nil {
			return out, err
		}
		out.Type = string(typ)
	}
	if opts.RetrieveValue {
		if out.Value, err = k.DecryptValue(r.Value, r.Key); err != nil {
			return out, err
		}
	}
	if opts.RetrieveTags {
		if out.Tags, err = k.DecryptTags(r.Tags); err != nil {
			return out, err
		}
	}
	return out, nil
}
