// Package format turns catalog and cart values into display strings for the
// terminal storefront.
package format
