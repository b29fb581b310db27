package session

import (
	"fmt"

	"github.com/MrEthical07/goGate/role"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// EncodeUser serializes u as the JSON object stored under the persisted "user"
// key: {"username","name","email","role"}. Empty optional fields are omitted.
func EncodeUser(u UserIdentity) ([]byte, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	doc := []byte(`{}`)
	var err error
	if doc, err = sjson.SetBytes(doc, "username", u.Username); err != nil {
		return nil, err
	}
	if u.Name != "" {
		if doc, err = sjson.SetBytes(doc, "name", u.Name); err != nil {
			return nil, err
		}
	}
	if u.Email != "" {
		if doc, err = sjson.SetBytes(doc, "email", u.Email); err != nil {
			return nil, err
		}
	}
	if doc, err = sjson.SetBytes(doc, "role", string(u.Role)); err != nil {
		return nil, err
	}
	return doc, nil
}

// DecodeUser parses a persisted user record. Unknown fields are ignored.
// Any structural problem yields ErrCorruptUser.
func DecodeUser(data []byte) (UserIdentity, error) {
	if len(data) == 0 || !gjson.ValidBytes(data) {
		return UserIdentity{}, fmt.Errorf("%w: invalid json", ErrCorruptUser)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return UserIdentity{}, fmt.Errorf("%w: not an object", ErrCorruptUser)
	}

	username := root.Get("username")
	if username.Type != gjson.String || username.Str == "" {
		return UserIdentity{}, fmt.Errorf("%w: username", ErrCorruptUser)
	}

	roleField := root.Get("role")
	if roleField.Type != gjson.String {
		return UserIdentity{}, fmt.Errorf("%w: role", ErrCorruptUser)
	}
	r, err := role.Parse(roleField.Str)
	if err != nil {
		return UserIdentity{}, fmt.Errorf("%w: %v", ErrCorruptUser, err)
	}

	name, ok := optionalString(root.Get("name"))
	if !ok {
		return UserIdentity{}, fmt.Errorf("%w: name", ErrCorruptUser)
	}
	email, ok := optionalString(root.Get("email"))
	if !ok {
		return UserIdentity{}, fmt.Errorf("%w: email", ErrCorruptUser)
	}

	u := UserIdentity{
		Username: username.Str,
		Name:     name,
		Email:    email,
		Role:     r,
	}
	if err := u.Validate(); err != nil {
		return UserIdentity{}, fmt.Errorf("%w: %v", ErrCorruptUser, err)
	}
	return u, nil
}

func optionalString(v gjson.Result) (string, bool) {
	switch v.Type {
	case gjson.Null:
		return "", true
	case gjson.String:
		return v.Str, true
	default:
		return "", false
	}
}
