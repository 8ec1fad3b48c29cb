// Package geometry describes NAND device geometry and board boot layouts.
//
// # Geometry
//
// A Geometry fixes everything the loader needs to address a device:
//
//	PageSize        main-area bytes per page (512 = small page, >512 = large page)
//	OOBSize         spare bytes per page
//	PagesPerBlock   pages per erase block
//	Blocks          erase blocks on the device
//	BusWidth        8 or 16 bit data bus
//	AddressCycles   0 to derive from page size and capacity
//	BadBlockPos     OOB offset of the factory marker (AutoBadBlockPos to derive)
//	ECC             step size, bytes per step, strength, OOB positions
//
// Address cycles are derived the same way the classic SPL configurations
// select them: small-page devices use one column and two row cycles, plus one
// row cycle above 32 MiB; large-page devices use two column and two row
// cycles, plus one row cycle above 128 MiB.
//
// # Board Files
//
// Board files are YAML:
//
//	name: demo-smallpage
//	page_size: 512
//	oob_size: 16
//	pages_per_block: 32
//	blocks: 2048
//	ecc:
//	  scheme: hamming
//	  step_size: 256
//	  bytes: 3
//	  positions: [0, 1, 2, 3, 6, 7]
//	boot:
//	  - name: u-boot
//	    kind: image
//	    offset: 0x4000
//	    size: 0x40000
//	  - name: env
//	    kind: env
//	    offset: 0x80000
//	    size: 0x4000
//
// Load one with Parse or ParseReader; both validate before returning:
//
//	board, err := geometry.Parse("demo.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Presets
//
// SmallPage and LargePage return the default layouts used by most boards:
// software Hamming ECC over 256 byte steps, with the ECC bytes placed around
// the bad-block marker.
package geometry
