package levelgen

// NavMeshBaker is told once generation is complete that static geometry is
// final. It's handed the road boundary & every solid obstacle, which it must
// treat as read only.
type NavMeshBaker interface {
	// Bake builds navigation data for the level. An error fails the whole
	// generation; no level is returned.
	Bake(geom *StaticGeometry) error
}
