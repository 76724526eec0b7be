package headerstore

// Compiled-in checkpoint tables, one per network, mirroring the source's
// cpt_main/cpt_testnet static arrays (block-store.c). Each hash is the
// big-endian hex encoding of the 256-bit block identity, as spec §6
// requires. Only the genesis record is mandatory; later heights may be
// added as the chain matures and operators want to pin known-good history.

const (
	NetworkMain = "main"
	NetworkTest = "test"
)

const mainGenesisHex = "0000000000000000000000000000000000000000000000000000000000000001"
const testGenesisHex = "0000000000000000000000000000000000000000000000000000000000000002"

func mustCheckpointTable(pairs []struct {
	Height  uint32
	HexHash string
}) CheckpointTable {
	t, err := NewCheckpointTable(pairs)
	if err != nil {
		panic(err)
	}
	return t
}

// CheckpointsForNetwork returns the compiled-in checkpoint table for the
// given network selector ("main" or "test"). An unrecognized selector is a
// configuration error, not a panic -- see ValidateConfig.
func CheckpointsForNetwork(network string) (CheckpointTable, bool) {
	switch network {
	case NetworkMain:
		return checkpointsMain, true
	case NetworkTest:
		return checkpointsTest, true
	default:
		return CheckpointTable{}, false
	}
}

var checkpointsMain = mustCheckpointTable([]struct {
	Height  uint32
	HexHash string
}{
	{Height: 0, HexHash: mainGenesisHex},
})

var checkpointsTest = mustCheckpointTable([]struct {
	Height  uint32
	HexHash string
}{
	{Height: 0, HexHash: testGenesisHex},
})
