package timetable

// AssociationEntry is either an *Association or an *AssociationCancellation
type AssociationEntry interface {
	Overlayable
	Header() *AssociationHeader
	isAssociationEntry()
}

type AssociationHeader struct {
	PrimaryUID        string            `json:"primary_uid" groups:"basic"`
	SecondaryUID      string            `json:"secondary_uid" groups:"basic"`
	PrimarySuffix     string            `json:"primary_suffix,omitempty" groups:"detailed"`
	SecondarySuffix   string            `json:"secondary_suffix,omitempty" groups:"detailed"`
	Location          string            `json:"location" groups:"basic"`
	Period            Period            `json:"period" groups:"detailed"`
	ShortTermPlanning ShortTermPlanning `json:"stp" groups:"detailed"`
}

func (h *AssociationHeader) Header() *AssociationHeader {
	return h
}

func (h *AssociationHeader) STP() ShortTermPlanning {
	return h.ShortTermPlanning
}

// SameIdentity compares the pair of services, the location and, when both
// sides are running associations, the day offset
func (h *AssociationHeader) SameIdentity(other Overlayable) bool {
	entry, ok := other.(AssociationEntry)
	if !ok {
		return false
	}

	o := entry.Header()
	if h.PrimaryUID != o.PrimaryUID || h.SecondaryUID != o.SecondaryUID ||
		h.Location != o.Location || h.PrimarySuffix != o.PrimarySuffix || h.SecondarySuffix != o.SecondarySuffix {
		return false
	}

	return true
}

// Involves reports whether uid is either side of the association
func (h *AssociationHeader) Involves(uid string) bool {
	return h.PrimaryUID == uid || h.SecondaryUID == uid
}

type Association struct {
	AssociationHeader
	Category AssociationCategory `json:"category" groups:"basic"`
	Day      AssociationDay      `json:"day" groups:"basic"`
	Type     AssociationType     `json:"type" groups:"detailed"`
}

func (*Association) isAssociationEntry() {}

func (a *Association) SameIdentity(other Overlayable) bool {
	if !a.AssociationHeader.SameIdentity(other) {
		return false
	}
	if running, ok := other.(*Association); ok {
		return running.Day == a.Day
	}
	return true
}

type AssociationCancellation struct {
	AssociationHeader
}

func (*AssociationCancellation) isAssociationEntry() {}

// DatedAssociation links the dated services on either side of an association
type DatedAssociation struct {
	Association *Association
	Primary     *DatedService
	Secondary   *DatedService
}
