// Package loader reads ROM images into the emulated address space.
package loader

import (
	"fmt"
	"os"
)

// MainROMBase is the load address of the system ROM.
const MainROMBase = 0x0

// MainROMLimit is the largest system ROM the address map allows, up to
// the expansion slot.
const MainROMLimit = 0xC000

// ExpansionROMBase is the load address of the expansion slot ROM.
const ExpansionROMBase = 0xC000

// ExpansionROMLimit caps the expansion ROM at the top of the ROM area.
const ExpansionROMLimit = 0x4000

// Image is a ROM image ready to be copied into memory.
type Image struct {
	// Base is the load address.
	Base uint32
	// Data is the raw image contents.
	Data []byte
}

// LoadMain reads a system ROM image from path.
func LoadMain(path string) (*Image, error) {
	return load(path, MainROMBase, MainROMLimit)
}

// LoadExpansion reads an expansion slot ROM image from path.
func LoadExpansion(path string) (*Image, error) {
	return load(path, ExpansionROMBase, ExpansionROMLimit)
}

func load(path string, base uint32, limit int) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("ROM image %s is empty", path)
	}
	if len(data) > limit {
		return nil, fmt.Errorf("ROM image %s is %d bytes, limit is %d",
			path, len(data), limit)
	}
	return &Image{Base: base, Data: data}, nil
}
