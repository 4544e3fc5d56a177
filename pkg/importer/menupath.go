package importer

import "strings"

// sceneNameSep is the token GLTF exporters use to encode a menu hierarchy
// inside a scene name.
const sceneNameSep = "_>_"

// menuSep joins segments of the human-readable form.
const menuSep = " > "

// decodeSceneName turns a raw scene name into its display name and menu
// placement path. A name like "Calo_>_ECAL_>_Barrel" yields the display name
// "Calo > ECAL > Barrel" and the menu path "Calo > ECAL" (the display name
// minus its last segment). A non-empty menuRoot is prepended as an extra
// leading segment. Pure function.
func decodeSceneName(raw, menuRoot string) (display, menuPath string) {
	segments := strings.Split(raw, sceneNameSep)
	if menuRoot != "" {
		segments = append([]string{menuRoot}, segments...)
	}
	display = strings.Join(segments, menuSep)
	menuPath = strings.Join(segments[:len(segments)-1], menuSep)
	return display, menuPath
}
