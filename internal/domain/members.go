package domain

import (
	"errors"
	"time"
)

var (
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyExists = errors.New("member already exists")
)

type Member struct {
	ConnectionId string    `json:"connection_id"`
	DisplayName  string    `json:"display_name"`
	JoinedAt     time.Time `json:"joined_at"`
}

// Members is kept in join order.
type Members struct {
	list []Member
}

func (m Members) Length() int {
	return len(m.list)
}

func (m Members) AsList() []Member {
	list := make([]Member, len(m.list))
	copy(list, m.list)
	return list
}

func (m Members) GetById(connectionId string) (Member, int, error) {
	for index, member := range m.list {
		if member.ConnectionId == connectionId {
			return member, index, nil
		}
	}

	return Member{}, 0, ErrMemberNotFound
}

func (m *Members) Add(member Member) error {
	if _, _, err := m.GetById(member.ConnectionId); err == nil {
		return ErrMemberAlreadyExists
	}

	m.list = append(m.list, member)
	return nil
}

// RemoveMember returns members without leavingId and the admin that should hold
// authority afterwards. When the admin leaves, the earliest joined remaining member
// is promoted; when nobody remains the admin is empty. removed is false if
// leavingId was not a member, in which case the input is returned unchanged.
func RemoveMember(members []Member, adminId, leavingId string) (remaining []Member, newAdminId string, removed bool) {
	index := -1
	for i, member := range members {
		if member.ConnectionId == leavingId {
			index = i
			break
		}
	}
	if index == -1 {
		return members, adminId, false
	}

	remaining = make([]Member, 0, len(members)-1)
	remaining = append(remaining, members[:index]...)
	remaining = append(remaining, members[index+1:]...)

	newAdminId = adminId
	switch {
	case len(remaining) == 0:
		newAdminId = ""
	case leavingId == adminId:
		newAdminId = remaining[0].ConnectionId
	}

	return remaining, newAdminId, true
}
