package profile

// ProfileOutput is returned by every profile operation except logout.
type ProfileOutput struct {
	Body Profile
}
