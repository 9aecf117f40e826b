package metrics

// Prometheus metric labels.
const (
	LabelClientType    = "client_type"
	LabelConsensusType = "consensus_type"
	LabelClientID      = "client_id"
	LabelUpdateType    = "update_type"
	LabelMsgType       = "msg_type"
)

// Counter keys of the client lifecycle.
var (
	KeyCreateClient       = []string{"ibc", "client", "create"}
	KeyUpdateClient       = []string{"ibc", "client", "update"}
	KeyUpgradeClient      = []string{"ibc", "client", "upgrade"}
	KeyRecoverClient      = []string{"ibc", "client", "recover"}
	KeyClientMisbehaviour = []string{"ibc", "client", "misbehaviour"}
)
