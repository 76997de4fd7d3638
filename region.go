package chanvese

// RegionAverages computes the per-channel mean of f over {Φ >= 0} into c1
// and over {Φ < 0} into c2. phi has width*height elements; f has
// width*height*numChannels elements in channel-planar order (the sample
// for channel k at (x,y) is f[x+width*(y+height*k)]). c1 and c2 must each
// have at least numChannels elements. If a region contains no pixels, its
// mean is set to 0 for every channel.
func RegionAverages(c1, c2, phi, f []float64, width, height, numChannels int) {
	numPixels := width * height

	for ch := 0; ch < numChannels; ch++ {
		fCh := f[ch*numPixels : (ch+1)*numPixels]
		var sum1, sum2 float64
		var count1, count2 int

		for n := 0; n < numPixels; n++ {
			if phi[n] >= 0 {
				count1++
				sum1 += fCh[n]
			} else {
				count2++
				sum2 += fCh[n]
			}
		}

		if count1 > 0 {
			c1[ch] = sum1 / float64(count1)
		} else {
			c1[ch] = 0
		}
		if count2 > 0 {
			c2[ch] = sum2 / float64(count2)
		} else {
			c2[ch] = 0
		}
	}
}
