// Package snapshot writes the compressed filesystem cache read by the map
// client and the web layer.
//
// Each world gets a directory under Config.Dir holding one gzip JSON file per
// occupied continent and one info file:
//
//	data/br52/55    {"510": {"512": [1001, "Home", 800, 7, 14]}}
//	data/br52/info  {"config": {...}, "players": {...}, "tribes": {...}, "provinces": [...]}
//
// A continent is a 100x100 block named by two digits, the tens of y then the
// tens of x. Village records are [id, name, points, character_id or 0,
// province_id]. Continent files of a world that are no longer occupied are
// removed on the next write.
//
// When a Mirror is configured every written file is uploaded to object
// storage under <world>/ and stale objects are pruned.
package snapshot
