package dto

import "encoding/json"

type CreateUserRequest struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"bcryptsafe"`
	Role     string  `json:"role" validate:"omitempty,max=64"`
	TenantID *string `json:"tenant_id" validate:"omitempty,uuid"`
}

// UpdateUserRequest is a partial update; at least one field must be set.
type UpdateUserRequest struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,bcryptsafe"`
	TenantID NullableString `json:"tenant_id" validate:"omitempty,uuid"`
}

// Empty reports whether no field was supplied.
func (r UpdateUserRequest) Empty() bool {
	return r.Email == nil && r.Password == nil && !r.TenantID.Set
}

// NullableString tells an absent JSON field from an explicit null. Set is true
// whenever the key was present; Value is nil for null.
type NullableString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON is only called when the key is present, including for null.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// Null reports an explicit null.
func (n NullableString) Null() bool {
	return n.Set && n.Value == nil
}

type CreateRoleRequest struct {
	Name        string  `json:"name" validate:"required,max=64"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}
