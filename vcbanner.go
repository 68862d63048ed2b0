/*
Package vcbanner builds Virtual Console home menu banners.

A banner is built by taking a regional template container, replacing the
cartridge label texture and its mip levels with a user supplied image,
replacing the footer texture with rendered title and subtitle text and then
rebuilding the container. The label and footer rasters are prepared once and
shared by every region so that all regional banners are identical apart from
their template.
*/
package vcbanner

import "log"

// Patcher builds banners for each region of a template set
type Patcher struct {
	config *Config
	db     *GameDB
	logger *log.Logger
}

// New returns a Patcher for the given template set. db may be nil if games
// will not be looked up by ROM.
func New(config *Config, db *GameDB, logger *log.Logger) *Patcher {
	return &Patcher{
		config: config,
		db:     db,
		logger: logger,
	}
}

// Config returns the configuration in use
func (p *Patcher) Config() *Config {
	return p.config
}
