package flash

// Partition types
const (
	TypeApp  uint8 = 0x00
	TypeData uint8 = 0x01
)

// Data partition subtypes
const (
	SubtypeAny uint8 = 0xff
	SubtypeLFS uint8 = 0xfe
)

// Partition is one row of the flash partition table.
type Partition struct {
	Type    uint8  `yaml:"type"`
	Subtype uint8  `yaml:"subtype"`
	Label   string `yaml:"label"`
	Address uint32 `yaml:"address"`
	Size    uint32 `yaml:"size"`
}

// Table is the flash partition table in on-flash order.
type Table []Partition

// Find returns the first partition matching type, subtype and label.
// SubtypeAny and an empty label act as wildcards.
func (t Table) Find(typ, subtype uint8, label string) (*Partition, bool) {
	for i := range t {
		p := &t[i]
		if p.Type != typ {
			continue
		}
		if subtype != SubtypeAny && p.Subtype != subtype {
			continue
		}
		if label != "" && p.Label != label {
			continue
		}
		return p, true
	}
	return nil, false
}

// Sector returns the index of the sector holding addr.
func Sector(addr uint32) uint32 {
	return addr / SectorSize
}
