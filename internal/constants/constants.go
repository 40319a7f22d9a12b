package constants

const HcKeVAngs float64 = 12.39842                  // [keV angstrom]
const HcKeVCm float64 = HcKeVAngs * 1e-8            // [keV cm]
const Micron2Cm float64 = 1e-4                      // [cm um^-1]
const Angs2Cm float64 = 1e-8                        // [cm angstrom^-1]
const Arcsec2Rad = 2. * 3.141592653589793 / 1296000 // [rad arcsec^-1]
const ElectronRadius float64 = 2.8179403262e-13     // [cm]
const ProtonMass float64 = 1.67262192369e-24        // [g]
