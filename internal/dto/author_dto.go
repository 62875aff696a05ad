package dto

import (
	"bytes"
	"encoding/json"
)

// Author is either a resolved profile or, when the profile lookup failed,
// just the raw user id. It marshals as an object or as a bare string accordingly.
type Author struct {
	Resolved    bool
	Id          string
	Username    string
	DisplayName string
	Image       *string
}

type authorProfile struct {
	Id          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName"`
	Image       *string `json:"image"`
}

func UnresolvedAuthor(id string) Author {
	return Author{Id: id}
}

func (a Author) MarshalJSON() ([]byte, error) {
	if !a.Resolved {
		return json.Marshal(a.Id)
	}
	return json.Marshal(authorProfile{
		Id:          a.Id,
		Username:    a.Username,
		DisplayName: a.DisplayName,
		Image:       a.Image,
	})
}

func (a *Author) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*a = Author{Id: id}
		return nil
	}

	var p authorProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Author{
		Resolved:    true,
		Id:          p.Id,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Image:       p.Image,
	}
	return nil
}
