package player

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

var adjectives = []string{
	"Sneaky", "Wobbly", "Turbo", "Sleepy", "Grumpy", "Dizzy", "Mighty",
	"Fancy", "Cosmic", "Soggy", "Spicy", "Jolly", "Nimble", "Clumsy",
	"Funky", "Brave", "Lazy", "Zesty",
}

var nouns = []string{
	"Tetromino", "Pancake", "Walrus", "Noodle", "Penguin", "Brick",
	"Llama", "Pickle", "Gecko", "Wizard", "Potato", "Badger", "Muffin",
	"Otter", "Yeti", "Waffle",
}

// RandomName returns a throwaway display name like "Wobbly Walrus".
func RandomName(rng *rand.Rand) string {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return adjectives[rng.Intn(len(adjectives))] + " " + nouns[rng.Intn(len(nouns))]
}

// Profile is the local player: a display name and the stored record of the
// last finished game, which is the one a rename applies to.
type Profile struct {
	mu      sync.RWMutex
	name    string
	savedID string
}

// NewProfile uses name, or a random one when name is blank.
func NewProfile(name string, rng *rand.Rand) *Profile {
	name = strings.TrimSpace(name)
	if name == "" {
		name = RandomName(rng)
	}
	return &Profile{name: name}
}

func (p *Profile) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

// SetName changes the name. Blank names are ignored.
func (p *Profile) SetName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.name = name
	return true
}

// BeginGame forgets the previous game's record.
func (p *Profile) BeginGame() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.savedID = ""
}

// MarkSaved records the stored ID of the game that just ended.
func (p *Profile) MarkSaved(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.savedID = id
}

// SavedID is empty until the current game has been stored.
func (p *Profile) SavedID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.savedID
}

// CanRename reports whether there is a stored record to rename.
func (p *Profile) CanRename() bool {
	return p.SavedID() != ""
}
