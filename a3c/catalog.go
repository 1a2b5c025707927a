package a3c

// Static action and argument catalogue. Function ids match the environment's
// function table; the contiguous training indices are positions in the
// generalActions / factionActions slices, not the ids themselves.

// DefaultUnitTypeCount bounds the per-unit-type enemy histogram. Unit type
// ids at or above this value are outside the catalogue and are skipped during
// the screen scan.
const DefaultUnitTypeCount = 600

// Argument type names referenced by name elsewhere.
const (
	argScreen  = "screen"
	argMinimap = "minimap"
	argScreen2 = "screen2"
)

// argTypeCatalog lists every argument type of the factored action space in
// declared order. Spatial dimensions are declared as 0 and resolved against
// the active SpatialConfig.
var argTypeCatalog = []ArgType{
	{Name: argScreen, Dims: []int{0, 0}},
	{Name: argMinimap, Dims: []int{0, 0}},
	{Name: argScreen2, Dims: []int{0, 0}},
	{Name: "queued", Dims: []int{2}},
	{Name: "control_group_act", Dims: []int{5}},
	{Name: "control_group_id", Dims: []int{10}},
	{Name: "select_point_act", Dims: []int{4}},
	{Name: "select_add", Dims: []int{2}},
	{Name: "select_unit_act", Dims: []int{4}},
	{Name: "select_unit_id", Dims: []int{500}},
	{Name: "select_worker", Dims: []int{4}},
	{Name: "build_queue_id", Dims: []int{10}},
	{Name: "unload_id", Dims: []int{500}},
}

// argType returns the catalogue entry with the given name. Catalogue names
// are fixed at compile time, so a miss is a programming error.
func argType(name string) ArgType {
	for _, a := range argTypeCatalog {
		if a.Name == name {
			return a
		}
	}
	panic("argType: no catalogue entry named " + name)
}

// generalActions are available to every faction.
var generalActions = []ActionSpec{
	{ID: 0, Name: "no_op"},
	{ID: 1, Name: "move_camera", Args: []ArgType{argType("minimap")}},
	{ID: 2, Name: "select_point", Args: []ArgType{argType("select_point_act"), argType("screen")}},
	{ID: 3, Name: "select_rect", Args: []ArgType{argType("select_add"), argType("screen"), argType("screen2")}},
	{ID: 4, Name: "select_control_group", Args: []ArgType{argType("control_group_act"), argType("control_group_id")}},
	{ID: 5, Name: "select_unit", Args: []ArgType{argType("select_unit_act"), argType("select_unit_id")}},
	{ID: 6, Name: "select_idle_worker", Args: []ArgType{argType("select_worker")}},
	{ID: 7, Name: "select_army", Args: []ArgType{argType("select_add")}},
	{ID: 12, Name: "Attack_screen", Args: []ArgType{argType("queued"), argType("screen")}},
	{ID: 13, Name: "Attack_minimap", Args: []ArgType{argType("queued"), argType("minimap")}},
	{ID: 274, Name: "HoldPosition_quick", Args: []ArgType{argType("queued")}},
	{ID: 331, Name: "Move_screen", Args: []ArgType{argType("queued"), argType("screen")}},
	{ID: 332, Name: "Move_minimap", Args: []ArgType{argType("queued"), argType("minimap")}},
	{ID: 333, Name: "Patrol_screen", Args: []ArgType{argType("queued"), argType("screen")}},
	{ID: 334, Name: "Patrol_minimap", Args: []ArgType{argType("queued"), argType("minimap")}},
	{ID: 451, Name: "Smart_screen", Args: []ArgType{argType("queued"), argType("screen")}},
	{ID: 452, Name: "Smart_minimap", Args: []ArgType{argType("queued"), argType("minimap")}},
	{ID: 453, Name: "Stop_quick", Args: []ArgType{argType("queued")}},
}

// factionActions extend the general set per faction. Indices continue after
// the general actions, so index stability depends on these slices never being
// mutated at runtime.
var factionActions = map[Faction][]ActionSpec{
	FactionTerran: {
		{ID: 42, Name: "Build_Barracks_screen", Args: []ArgType{argType("queued"), argType("screen")}},
		{ID: 44, Name: "Build_CommandCenter_screen", Args: []ArgType{argType("queued"), argType("screen")}},
		{ID: 79, Name: "Build_Refinery_screen", Args: []ArgType{argType("queued"), argType("screen")}},
		{ID: 91, Name: "Build_SupplyDepot_screen", Args: []ArgType{argType("queued"), argType("screen")}},
		{ID: 402, Name: "Morph_SiegeMode_quick", Args: []ArgType{argType("queued")}},
		{ID: 477, Name: "Train_Marine_quick", Args: []ArgType{argType("queued")}},
		{ID: 490, Name: "Train_SCV_quick", Args: []ArgType{argType("queued")}},
	},
	FactionProtoss: {
		{ID: 62, Name: "Build_Gateway_screen", Args: []ArgType{argType("queued"), argType("screen")}},
		{ID: 64, Name: "Build_Nexus_screen", Args: []ArgType{argType("queued"), argType("screen")}},
		{ID: 70, Name: "Build_Pylon_screen", Args: []ArgType{argType("queued"), argType("screen")}},
		{ID: 8, Name: "select_warp_gates", Args: []ArgType{argType("select_add")}},
		{ID: 485, Name: "Train_Probe_quick", Args: []ArgType{argType("queued")}},
		{ID: 503, Name: "Train_Zealot_quick", Args: []ArgType{argType("queued")}},
	},
	FactionZerg: {
		{ID: 59, Name: "Build_Hatchery_screen", Args: []ArgType{argType("queued"), argType("screen")}},
		{ID: 89, Name: "Build_SpawningPool_screen", Args: []ArgType{argType("queued"), argType("screen")}},
		{ID: 9, Name: "select_larva"},
		{ID: 467, Name: "Train_Drone_quick", Args: []ArgType{argType("queued")}},
		{ID: 483, Name: "Train_Overlord_quick", Args: []ArgType{argType("queued")}},
		{ID: 498, Name: "Train_Zergling_quick", Args: []ArgType{argType("queued")}},
	},
}
