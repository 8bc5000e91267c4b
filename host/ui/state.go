package ui

import (
	"github.com/mokiat/lacking/game"

	"github.com/nobonobo/lowpoly-church/schema"
)

type GlobalState struct {
	Engine      *game.Engine
	ResourceSet *game.ResourceSet
	Layout      *schema.Layout
}
