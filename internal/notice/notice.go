// Package notice models platform group notices as a closed sum type.
//
// The wire form is a JSON object tagged by notice_type, with notify events
// tagged a second time by sub_type. Decode is strict: unknown tags and
// unknown sub-type values are errors, and the caller drops the unit.
package notice

import (
	"encoding/json"
	"fmt"
)

// Notice is one decoded group notice. The set of implementations is closed;
// consumers switch on the concrete type without a default arm so a new
// variant fails to compile rather than silently falling through.
type Notice interface {
	notice()
}

// AdminSubType distinguishes admin grants from revocations.
type AdminSubType string

const (
	AdminSet   AdminSubType = "set"
	AdminUnset AdminSubType = "unset"
)

func (t AdminSubType) valid() bool {
	switch t {
	case AdminSet, AdminUnset:
		return true
	}
	return false
}

// DecreaseSubType distinguishes how a member left.
type DecreaseSubType string

const (
	DecreaseLeave  DecreaseSubType = "leave"
	DecreaseKick   DecreaseSubType = "kick"
	DecreaseKickMe DecreaseSubType = "kick_me"
)

func (t DecreaseSubType) valid() bool {
	switch t {
	case DecreaseLeave, DecreaseKick, DecreaseKickMe:
		return true
	}
	return false
}

// IncreaseSubType distinguishes how a member joined.
type IncreaseSubType string

const (
	IncreaseApprove IncreaseSubType = "approve"
	IncreaseInvite  IncreaseSubType = "invite"
)

func (t IncreaseSubType) valid() bool {
	switch t {
	case IncreaseApprove, IncreaseInvite:
		return true
	}
	return false
}

// BanSubType distinguishes mutes from unmutes.
type BanSubType string

const (
	BanBan     BanSubType = "ban"
	BanLiftBan BanSubType = "lift_ban"
)

func (t BanSubType) valid() bool {
	switch t {
	case BanBan, BanLiftBan:
		return true
	}
	return false
}

// HonorType is the honor a member earned.
type HonorType string

const (
	HonorTalkative HonorType = "talkative"
	HonorPerformer HonorType = "performer"
	HonorEmotion   HonorType = "emotion"
)

func (t HonorType) valid() bool {
	switch t {
	case HonorTalkative, HonorPerformer, HonorEmotion:
		return true
	}
	return false
}

// GroupUpload reports a file uploaded to a group.
type GroupUpload struct {
	Time    int64 `json:"time"`
	SelfID  int64 `json:"self_id"`
	GroupID int64 `json:"group_id"`
	UserID  int64 `json:"user_id"`
}

// GroupAdmin reports an admin grant or revocation. There is no operator;
// only the group owner changes admins.
type GroupAdmin struct {
	Time    int64        `json:"time"`
	SelfID  int64        `json:"self_id"`
	SubType AdminSubType `json:"sub_type"`
	GroupID int64        `json:"group_id"`
	UserID  int64        `json:"user_id"`
}

// GroupDecrease reports a member leaving or being removed.
type GroupDecrease struct {
	Time       int64           `json:"time"`
	SelfID     int64           `json:"self_id"`
	SubType    DecreaseSubType `json:"sub_type"`
	GroupID    int64           `json:"group_id"`
	OperatorID int64           `json:"operator_id"`
	UserID     int64           `json:"user_id"`
}

// GroupIncrease reports a member joining.
type GroupIncrease struct {
	Time       int64           `json:"time"`
	SelfID     int64           `json:"self_id"`
	SubType    IncreaseSubType `json:"sub_type"`
	GroupID    int64           `json:"group_id"`
	OperatorID int64           `json:"operator_id"`
	UserID     int64           `json:"user_id"`
}

// GroupBan reports a mute or unmute. Duration is in seconds and zero for
// lift_ban.
type GroupBan struct {
	Time       int64      `json:"time"`
	SelfID     int64      `json:"self_id"`
	SubType    BanSubType `json:"sub_type"`
	GroupID    int64      `json:"group_id"`
	OperatorID int64      `json:"operator_id"`
	UserID     int64      `json:"user_id"`
	Duration   int64      `json:"duration"`
}

// FriendAdd reports a new friend.
type FriendAdd struct {
	Time   int64 `json:"time"`
	SelfID int64 `json:"self_id"`
	UserID int64 `json:"user_id"`
}

// GroupRecall reports a message retraction.
type GroupRecall struct {
	Time       int64 `json:"time"`
	SelfID     int64 `json:"self_id"`
	GroupID    int64 `json:"group_id"`
	UserID     int64 `json:"user_id"`
	OperatorID int64 `json:"operator_id"`
	MessageID  int64 `json:"message_id"`
}

// Poke reports one member poking another.
type Poke struct {
	Time     int64 `json:"time"`
	SelfID   int64 `json:"self_id"`
	GroupID  int64 `json:"group_id"`
	UserID   int64 `json:"user_id"`
	TargetID int64 `json:"target_id"`
}

// Honor reports a group honor changing hands.
type Honor struct {
	Time      int64     `json:"time"`
	SelfID    int64     `json:"self_id"`
	GroupID   int64     `json:"group_id"`
	HonorType HonorType `json:"honor_type"`
	UserID    int64     `json:"user_id"`
}

func (GroupUpload) notice()   {}
func (GroupAdmin) notice()    {}
func (GroupDecrease) notice() {}
func (GroupIncrease) notice() {}
func (GroupBan) notice()      {}
func (FriendAdd) notice()     {}
func (GroupRecall) notice()   {}
func (Poke) notice()          {}
func (Honor) notice()         {}

// Decode parses one raw notice. Unknown notice_type or sub_type values are
// errors; the unit is malformed input and the caller drops it.
func Decode(raw []byte) (Notice, error) {
	var probe struct {
		NoticeType string `json:"notice_type"`
		SubType    string `json:"sub_type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("decode notice: %w", err)
	}

	switch probe.NoticeType {
	case "group_upload":
		var n GroupUpload
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("decode notice: group_upload: %w", err)
		}
		return n, nil
	case "group_admin":
		var n GroupAdmin
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("decode notice: group_admin: %w", err)
		}
		if !n.SubType.valid() {
			return nil, fmt.Errorf("decode notice: group_admin has unknown sub_type %q", n.SubType)
		}
		return n, nil
	case "group_decrease":
		var n GroupDecrease
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("decode notice: group_decrease: %w", err)
		}
		if !n.SubType.valid() {
			return nil, fmt.Errorf("decode notice: group_decrease has unknown sub_type %q", n.SubType)
		}
		return n, nil
	case "group_increase":
		var n GroupIncrease
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("decode notice: group_increase: %w", err)
		}
		if !n.SubType.valid() {
			return nil, fmt.Errorf("decode notice: group_increase has unknown sub_type %q", n.SubType)
		}
		return n, nil
	case "group_ban":
		var n GroupBan
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("decode notice: group_ban: %w", err)
		}
		if !n.SubType.valid() {
			return nil, fmt.Errorf("decode notice: group_ban has unknown sub_type %q", n.SubType)
		}
		return n, nil
	case "friend_add":
		var n FriendAdd
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("decode notice: friend_add: %w", err)
		}
		return n, nil
	case "group_recall":
		var n GroupRecall
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("decode notice: group_recall: %w", err)
		}
		return n, nil
	case "notify":
		switch probe.SubType {
		case "poke":
			var n Poke
			if err := json.Unmarshal(raw, &n); err != nil {
				return nil, fmt.Errorf("decode notice: poke: %w", err)
			}
			return n, nil
		case "honor":
			var n Honor
			if err := json.Unmarshal(raw, &n); err != nil {
				return nil, fmt.Errorf("decode notice: honor: %w", err)
			}
			if !n.HonorType.valid() {
				return nil, fmt.Errorf("decode notice: honor has unknown honor_type %q", n.HonorType)
			}
			return n, nil
		default:
			return nil, fmt.Errorf("decode notice: unknown notify sub_type %q", probe.SubType)
		}
	default:
		return nil, fmt.Errorf("decode notice: unknown notice_type %q", probe.NoticeType)
	}
}
