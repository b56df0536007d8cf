package xplm

import "strconv"

// Message is an inter-plugin message identifier sent by the host.
type Message int

const (
	MsgPlaneCrashed      Message = 101
	MsgPlaneLoaded       Message = 102
	MsgAirportLoaded     Message = 103
	MsgSceneryLoaded     Message = 104
	MsgPlaneCountChanged Message = 105
	MsgPlaneUnloaded     Message = 106
	MsgWillWritePrefs    Message = 107
	MsgLiveryLoaded      Message = 108
)

// UserAircraft is the plane index carried by aircraft messages that concern
// the user's own aircraft.
const UserAircraft = 0

var messageNames = map[Message]string{
	MsgPlaneCrashed:      "plane_crashed",
	MsgPlaneLoaded:       "plane_loaded",
	MsgAirportLoaded:     "airport_loaded",
	MsgSceneryLoaded:     "scenery_loaded",
	MsgPlaneCountChanged: "plane_count_changed",
	MsgPlaneUnloaded:     "plane_unloaded",
	MsgWillWritePrefs:    "will_write_prefs",
	MsgLiveryLoaded:      "livery_loaded",
}

func (m Message) String() string {
	if name, ok := messageNames[m]; ok {
		return name
	}
	return "message_" + strconv.Itoa(int(m))
}

// ParseMessage accepts either a message name or its numeric identifier.
func ParseMessage(s string) (Message, bool) {
	for m, name := range messageNames {
		if name == s {
			return m, true
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	if _, ok := messageNames[Message(n)]; !ok {
		return 0, false
	}
	return Message(n), true
}
