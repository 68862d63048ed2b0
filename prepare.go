package vcbanner

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/bodgit/vcbanner/footer"
	"github.com/bodgit/vcbanner/label"
)

// mipLevels covers every level down to a single pixel of the label
const mipLevels = 8

// Input is the source material for a banner
type Input struct {
	Label    image.Image
	Title    string
	Subtitle string
	// ROM, if set, is looked up in the database to fill in anything not
	// provided
	ROM string
	// Background and Shell override the configuration
	Background *Color
	Shell      *Color
}

// Prepared holds the rasters shared by every region. It must not be
// modified once built.
type Prepared struct {
	// Mips holds the label at each mip level starting with the base
	Mips   []*image.NRGBA
	Footer *image.NRGBA
	Layout *footer.Layout
	// Shell is nil if the background texture is left alone
	Shell *color.NRGBA
}

func (p *Patcher) fromDatabase(in *Input) error {
	if p.db == nil {
		return ErrNoDatabase
	}

	game, err := p.db.FindGameByROM(in.ROM)
	if err != nil {
		return err
	}
	if game == nil {
		return fmt.Errorf("%w: %s", ErrGameNotFound, in.ROM)
	}

	if in.Title == "" {
		in.Title = game.Title
	}
	if in.Subtitle == "" {
		in.Subtitle = game.Subtitle
	}
	if in.Label == nil {
		in.Label = game.Label
	}

	return nil
}

func (p *Patcher) renderer() (*footer.Renderer, error) {
	if p.config.Font == "" {
		return footer.New()
	}

	file := p.config.Font
	if !filepath.IsAbs(file) {
		file = filepath.Join(p.config.Templates, file)
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return footer.NewFromFont(b)
}

func resolve(c *Color, fallback *Color, m image.Image) *color.NRGBA {
	if c == nil {
		c = fallback
	}
	if c == nil {
		return nil
	}
	if c.Auto {
		d := label.Dominant(m)
		return &d
	}
	v := c.NRGBA
	v.A = 0xff
	return &v
}

// Prepare builds the label and footer rasters
func (p *Patcher) Prepare(in Input) (*Prepared, error) {
	if in.ROM != "" {
		if err := p.fromDatabase(&in); err != nil {
			return nil, err
		}
	}
	if in.Label == nil {
		return nil, ErrNoLabel
	}

	bg := resolve(in.Background, p.config.Background, in.Label)
	if bg == nil {
		bg = &label.DefaultBackground
	}
	base := label.Flatten(label.Fit(in.Label, label.Width, label.Height, *bg), *bg)

	r, err := p.renderer()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	m, layout := r.Render(in.Title, in.Subtitle, footer.Width, footer.Height)
	if layout.Truncated {
		p.logger.Printf("Title %q truncated to %q\n", in.Title, layout.Lines)
	}
	if layout.SubtitleDropped {
		p.logger.Printf("Subtitle %q dropped, no room after %d title lines\n", in.Subtitle, len(layout.Lines))
	}

	return &Prepared{
		Mips:   label.Mips(base, mipLevels),
		Footer: m,
		Layout: layout,
		Shell:  resolve(in.Shell, p.config.Shell, in.Label),
	}, nil
}
