package vcbanner

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/bodgit/vcbanner/cbmd"
	"github.com/bodgit/vcbanner/cgfx"
	"github.com/bodgit/vcbanner/footer"
	"github.com/bodgit/vcbanner/texture"
)

// Result is the outcome of building one region
type Result struct {
	Region Region
	// Output holds the finished banner
	Output []byte
	// Path is where the banner was written, if anywhere
	Path string
	Err  error
}

// Skipped returns whether the region was skipped for lack of a template
func (r Result) Skipped() bool {
	return errors.Is(r.Err, ErrTemplateNotFound)
}

// find returns the first instance of the named texture and the slot of the
// section holding it
func find(c *cbmd.Container, name string) (cgfx.Texture, int, error) {
	for _, s := range c.Sections() {
		if t, ok := cgfx.Find(s.Textures, name); ok {
			return t, s.Slot, nil
		}
	}
	return cgfx.Texture{}, 0, fmt.Errorf("%w: %s", cbmd.ErrChunkNotFound, name)
}

// checkLevel returns a ChunkError if m is not the size of level l of t
func checkLevel(slot int, t cgfx.Texture, l int, m image.Image) error {
	b := m.Bounds()
	if b.Dx() == t.LevelWidth(l) && b.Dy() == t.LevelHeight(l) {
		return nil
	}

	size, _ := t.LevelSize(l)
	actual, _ := texture.Size(b.Dx(), b.Dy(), t.Format)
	return &cbmd.ChunkError{
		Name:     t.Name,
		Slot:     slot,
		Level:    l,
		Expected: size,
		Actual:   actual,
		Err:      cbmd.ErrChunkSizeMismatch,
	}
}

func replaceLevel(c *cbmd.Container, slot int, t cgfx.Texture, l int, m *image.NRGBA) error {
	if err := checkLevel(slot, t, l, m); err != nil {
		return err
	}

	b, err := texture.Encode(m, t.LevelWidth(l), t.LevelHeight(l), t.Format)
	if err != nil {
		return fmt.Errorf("%s level %d: %w", t.Name, l, err)
	}
	_, err = c.ReplaceLevel(t.Name, l, b)
	return err
}

// patchFooter draws the prepared text over the footer artwork of every
// section holding the named texture, each keeping its own artwork
func patchFooter(c *cbmd.Container, name string, prepared *Prepared) error {
	found := false
	for _, s := range c.Sections() {
		if _, ok := cgfx.Find(s.Textures, name); !ok {
			continue
		}
		found = true

		t, b, err := s.Chunk(name, 0)
		if err != nil {
			return err
		}
		if err := checkLevel(s.Slot, t, 0, prepared.Footer); err != nil {
			return err
		}

		m, err := texture.Decode(b, t.Width, t.Height, t.Format)
		if err != nil {
			return fmt.Errorf("%s in %s: %w", t.Name, cbmd.SlotName(s.Slot), err)
		}
		footer.Overlay(m, prepared.Footer, prepared.Layout)

		if b, err = texture.Encode(m, t.Width, t.Height, t.Format); err != nil {
			return fmt.Errorf("%s in %s: %w", t.Name, cbmd.SlotName(s.Slot), err)
		}
		if err := c.ReplaceSectionLevel(s.Slot, name, 0, b); err != nil {
			return err
		}
	}

	if !found {
		return fmt.Errorf("%w: %s", cbmd.ErrChunkNotFound, name)
	}
	return nil
}

// Patch rebuilds the template in b with the prepared label and footer
func (p *Patcher) Patch(b []byte, prepared *Prepared) ([]byte, error) {
	c, err := cbmd.Parse(b)
	if err != nil {
		return nil, err
	}

	t, slot, err := find(c, p.config.Chunks.Label)
	if err != nil {
		return nil, err
	}
	if t.Levels > len(prepared.Mips) {
		return nil, fmt.Errorf("%w: %s has %d levels", texture.ErrInvalidDimensions, t.Name, t.Levels)
	}
	for l := 0; l < t.Levels; l++ {
		if err := replaceLevel(c, slot, t, l, prepared.Mips[l]); err != nil {
			return nil, err
		}
	}

	// Without a title the stock footer is kept as is
	if prepared.Layout != nil && len(prepared.Layout.Lines) > 0 {
		if err := patchFooter(c, p.config.Chunks.Footer, prepared); err != nil {
			return nil, err
		}
	}

	if prepared.Shell != nil {
		if t, _, err = find(c, p.config.Chunks.Background); err != nil {
			return nil, err
		}
		for l := 0; l < t.Levels; l++ {
			b, err := texture.Solid(t.LevelWidth(l), t.LevelHeight(l), t.Format, *prepared.Shell)
			if err != nil {
				return nil, fmt.Errorf("%s level %d: %w", t.Name, l, err)
			}
			if _, err := c.ReplaceLevel(t.Name, l, b); err != nil {
				return nil, err
			}
		}
	}

	return c.Finalize()
}

func (p *Patcher) outputPath(r Region) string {
	return filepath.Join(p.config.Output, r.Code, OutputName)
}

// OutputName is the name each banner is written as, within a directory
// named after its region
const OutputName = "banner.bnr"

// BuildRegion builds the banner for one region. A missing template results
// in an error wrapping ErrTemplateNotFound.
func (p *Patcher) BuildRegion(ctx context.Context, r Region, prepared *Prepared) Result {
	result := Result{Region: r}

	fail := func(err error) Result {
		result.Err = &RegionError{Region: r.Code, Err: err}
		return result
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	file := filepath.Join(p.config.Templates, r.template())
	b, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			p.logger.Printf("Skipping %s, no template \"%s\"\n", r.Code, file)
			return fail(fmt.Errorf("%w: %s", ErrTemplateNotFound, file))
		}
		return fail(err)
	}

	if result.Output, err = p.Patch(b, prepared); err != nil {
		return fail(err)
	}

	if p.config.Output != "" {
		result.Path = p.outputPath(r)
		if err := writeFile(result.Path, result.Output); err != nil {
			result.Output, result.Path = nil, ""
			return fail(err)
		}
	}

	p.logger.Printf("Built %s, %d bytes\n", r.Code, len(result.Output))

	return result
}
