// 实现了一个签名缓存，用于提高交易验证的效率。

package txscript

import (
	"bytes"
	"sync"

	"github.com/qinglongcn/btccore/chainhash"
)

// sigCacheEntry 是签名缓存中的一项，以签名哈希为键。
type sigCacheEntry struct {
	sig    []byte
	pubKey []byte
}

// SigCache 缓存已经验证通过的 (签名哈希, 签名, 公钥) 三元组。
// 同一笔交易会在进入交易池、构建区块模板、验证区块时被多次校验，
// 命中缓存时可以跳过椭圆曲线运算。
//
// 缓存满时随机淘汰一项。可并发使用。
type SigCache struct {
	sync.RWMutex
	validSigs  map[chainhash.Hash]sigCacheEntry
	maxEntries uint
}

// NewSigCache 创建最多容纳 maxEntries 项的签名缓存。
func NewSigCache(maxEntries uint) *SigCache {
	return &SigCache{
		validSigs:  make(map[chainhash.Hash]sigCacheEntry, maxEntries),
		maxEntries: maxEntries,
	}
}

// Exists 报告缓存中是否存在该三元组。
func (s *SigCache) Exists(sigHash chainhash.Hash, sig []byte, pubKey []byte) bool {
	s.RLock()
	entry, ok := s.validSigs[sigHash]
	s.RUnlock()

	return ok && bytes.Equal(entry.pubKey, pubKey) && bytes.Equal(entry.sig, sig)
}

// Add 添加一个已验证的三元组。maxEntries 为 0 时不缓存任何内容。
func (s *SigCache) Add(sigHash chainhash.Hash, sig []byte, pubKey []byte) {
	s.Lock()
	defer s.Unlock()

	if s.maxEntries == 0 {
		return
	}

	// Evict a random entry when full; map iteration order is random.
	if uint(len(s.validSigs)+1) > s.maxEntries {
		for sigEntry := range s.validSigs {
			delete(s.validSigs, sigEntry)
			break
		}
	}
	s.validSigs[sigHash] = sigCacheEntry{
		sig:    append([]byte(nil), sig...),
		pubKey: append([]byte(nil), pubKey...),
	}
}
