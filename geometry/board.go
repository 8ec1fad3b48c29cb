package geometry

import "fmt"

// Image kinds in a boot layout.
const (
	// KindImage is the firmware image the SPL loads and jumps to
	KindImage = "image"

	// KindEnv is the primary environment block
	KindEnv = "env"

	// KindEnvRedund is the redundant environment block, loaded right behind
	// the primary copy in the environment destination
	KindEnvRedund = "env-redund"
)

// Board is a parsed board file: the device geometry plus the regions the SPL
// loads at boot.
type Board struct {
	Geometry Geometry
	Boot     []Image
}

// Image is one region of NAND loaded at boot.
type Image struct {
	// Name identifies the image in logs and output file names
	Name string

	// Kind is one of KindImage, KindEnv or KindEnvRedund
	Kind string

	// Offset is the NAND byte offset of the image (page aligned)
	Offset uint32

	// Size is the number of bytes to load
	Size uint32

	// LoadAddr is the memory address the image is linked to run at
	LoadAddr uint64
}

// Find returns the first image of the given kind.
func (b *Board) Find(kind string) (Image, bool) {
	for _, img := range b.Boot {
		if img.Kind == kind {
			return img, true
		}
	}
	return Image{}, false
}

// Validate checks the geometry and the boot layout.
func (b *Board) Validate() error {
	if err := b.Geometry.Validate(); err != nil {
		return err
	}

	counts := map[string]int{}
	for i, img := range b.Boot {
		field := fmt.Sprintf("boot[%d]", i)
		switch img.Kind {
		case KindImage, KindEnv, KindEnvRedund:
		default:
			return invalid(field+".kind", "unknown kind %q", img.Kind)
		}
		counts[img.Kind]++
		if img.Size == 0 {
			return invalid(field+".size", "must be positive")
		}
		if int(img.Offset)%b.Geometry.PageSize != 0 {
			return invalid(field+".offset", "0x%x is not aligned to %d byte pages",
				img.Offset, b.Geometry.PageSize)
		}
		if int64(img.Offset)+int64(img.Size) > b.Geometry.Size() {
			return invalid(field, "0x%x+0x%x runs past the %d byte device",
				img.Offset, img.Size, b.Geometry.Size())
		}
	}

	if counts[KindImage] != 1 && len(b.Boot) > 0 {
		return invalid("boot", "need exactly one %q image, got %d", KindImage, counts[KindImage])
	}
	if counts[KindEnv] > 1 || counts[KindEnvRedund] > 1 {
		return invalid("boot", "at most one %q and one %q image", KindEnv, KindEnvRedund)
	}
	if counts[KindEnvRedund] == 1 {
		env, ok := b.Find(KindEnv)
		if !ok {
			return invalid("boot", "%q requires an %q image", KindEnvRedund, KindEnv)
		}
		redund, _ := b.Find(KindEnvRedund)
		if redund.Size != env.Size {
			return invalid("boot", "%q size 0x%x differs from %q size 0x%x",
				KindEnvRedund, redund.Size, KindEnv, env.Size)
		}
	}
	return nil
}
