// Package tags reads embedded audio metadata so previews can show what an
// input is beyond its file name.
package tags
