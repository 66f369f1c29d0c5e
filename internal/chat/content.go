package chat

// Kind is the type of content carried by a message.
type Kind int

// Supported content kinds, listed in relay priority order.
const (
	KindText Kind = iota + 1
	KindPhoto
	KindVideo
	KindDocument
	KindAudio
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPhoto:
		return "photo"
	case KindVideo:
		return "video"
	case KindDocument:
		return "document"
	case KindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// Content is a single piece of content to deliver.
type Content struct {
	// Ref is the text body for KindText and the platform file reference otherwise.
	Ref     string
	Caption string
	Kind    Kind
}

// Inbound is a message as received from a user. The platform fills in at
// most one kind in practice.
type Inbound struct {
	Text     string
	Photo    string
	Video    string
	Document string
	Audio    string
	Caption  string
}

// Content picks the content to relay. When several kinds are present the
// first one in priority order wins and the rest are dropped.
func (in Inbound) Content() (Content, bool) {
	candidates := []struct {
		ref  string
		kind Kind
	}{
		{in.Text, KindText},
		{in.Photo, KindPhoto},
		{in.Video, KindVideo},
		{in.Document, KindDocument},
		{in.Audio, KindAudio},
	}

	for _, c := range candidates {
		if c.ref == "" {
			continue
		}
		content := Content{Kind: c.kind, Ref: c.ref}
		if c.kind != KindText {
			content.Caption = in.Caption
		}
		return content, true
	}
	return Content{}, false
}
