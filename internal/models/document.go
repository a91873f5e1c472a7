package models

// Document is the entire shared application state. It is read and replaced
// wholesale; no mutation path may assume any field is unchanged since the
// last read.
type Document struct {
	AllowRegister bool       `json:"allowRegister"`
	Users         []*Account `json:"users"`
}

func (d *Document) FindUser(id string) *Account {
	for _, u := range d.Users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (d *Document) FindByUsername(username string) *Account {
	for _, u := range d.Users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

// RemoveUser deletes the account with the given id, reporting whether it
// was present.
func (d *Document) RemoveUser(id string) bool {
	for i, u := range d.Users {
		if u.ID == id {
			d.Users = append(d.Users[:i], d.Users[i+1:]...)
			return true
		}
	}
	return false
}
