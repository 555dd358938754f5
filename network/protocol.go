package network

import "encoding/json"

// 消息ID。请求与直接回复共用同一个ID
const (
	MsgTypeHeartbeat = 1
	MsgTypeJoinRoom  = 101
	MsgTypeLeaveRoom = 102
	MsgTypeNewRoom   = 103
	MsgTypeMove      = 202
	MsgTypeStart     = 303
	MsgTypeFinish    = 305
	MsgTypeLeave     = 306
	MsgTypeTurn      = 310
	MsgTypeReveal    = 311
	MsgTypeLastMove  = 312
	MsgTypeScore     = 313
)

// JoinRejected is the join reply when the room is missing or full.
const JoinRejected = -1

// RoomRequest is the payload of join and leave requests.
type RoomRequest struct {
	RoomID string `json:"room_id"`
}

// MoveRequest asks to reveal (Row, Col) in RoomID.
type MoveRequest struct {
	RoomID string `json:"room_id"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

// MoveReply is sent back to the mover as [revealed, error]; exactly one of them is null.
type MoveReply struct {
	Revealed interface{}
	Error    *string
}

func (r MoveReply) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{r.Revealed, r.Error})
}

// Encode marshals an event payload.
func Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Decode unmarshals a request payload.
func Decode(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
