package filters

// Registration order is the order filters run in within one phase.
func init() {
	Default.InitRegister(ExposureID, Exposure.Factory())
	Default.InitRegister(RotateID, Rotate.Factory())
	Default.InitRegister(DenoiseID, Denoise.Factory())
	Default.InitRegister(GaussianBlurID, GaussianBlur.Factory())
	Default.InitRegister(SpotRepairID, newSpotRepairFilter)
	Default.InitRegister(LocalAdjustID, newLocalAdjustFilter)
	Default.InitRegister(ColorBoostID, ColorBoost.Factory())
	Default.InitRegister(VignetteID, Vignette.Factory())
}
