// Package domain models photovoltaic climate sites and their annual summaries.
//
// # Inputs
//
// Each site contributes one SiteLocation and one calendar year of hourly
// samples (nominally 8760 rows). Samples arrive already enriched by the
// upstream solar-geometry and King thermal models: solar position, angle of
// incidence, plane-of-array (POA) irradiance components, and a cell and
// module temperature for each of the six mounting fixtures.
//
// Missing measurements are NaN. Aggregations skip NaN the way a columnar
// sum or mean would: an all-NaN sum is 0, an all-NaN mean or extreme is NaN.
//
// # Fixtures
//
//	open_rack_glass           open rack, glass/cell/glass
//	roof_mount_glass          close roof mount, glass/cell/glass
//	open_rack_polymer         open rack, glass/cell/polymer sheet
//	insulated_back_polymer    insulated back, glass/cell/polymer sheet
//	open_rack_thinfilm_steel  open rack, polymer/thin-film/steel
//	concentrator_22x          22x linear concentrator tracker
//
// FixtureType indexes the per-sample temperature arrays and the per-fixture
// summary array, so every fixture runs through the same aggregation.
//
// # Units
//
// Irradiance is W/m^2 per hour, so hourly sums are Wh/m^2; annual sums are
// reported in GJ/m^2 (x 3.6e-6). UV doses are 5% of the corresponding annual
// energy scaled by 1000 and reported as MJ/y. Temperatures are Celsius.
//
// # Errors
//
// Per-site failures carry an ErrorKind (see KindOf) so a catalog build can
// report them without aborting the other sites.
package domain
