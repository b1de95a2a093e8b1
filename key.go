package libevents

import "fmt"

// reservedNames can never be used as event, remove or master keys.
var reservedNames = map[string]struct{}{
	"__proto__":   {},
	"constructor": {},
	"prototype":   {},
}

type token struct {
	description string
}

// Key identifies an event channel. It is either a plain name or an opaque token created by NewToken. Keys are
// comparable and can be used as map keys.
type Key struct {
	name  string
	token *token
}

// Name returns the Key for the given event name.
func Name(name string) Key {
	return Key{name: name}
}

// NewToken returns a new unique Key. Two tokens never compare equal, even when built from the same description.
func NewToken(description string) Key {
	return Key{token: &token{description: description}}
}

func (k Key) IsToken() bool {
	return k.token != nil
}

// label is the text used to match the key against the debug filter.
func (k Key) label() string {
	if k.token != nil {
		return k.token.description
	}
	return k.name
}

func (k Key) String() string {
	if k.token != nil {
		return fmt.Sprintf("Token(%s)", k.token.description)
	}
	return k.name
}

func isReservedName(name string) bool {
	_, found := reservedNames[name]
	return found
}
