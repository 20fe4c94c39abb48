package app

// Core route sets and bundled modules register themselves from init().
import (
	_ "bizdash/api/dashboard"
	_ "bizdash/api/graphql"
	_ "bizdash/api/modules"
	_ "bizdash/api/site"
	_ "bizdash/modules/cms"
	_ "bizdash/modules/proposals"
)
